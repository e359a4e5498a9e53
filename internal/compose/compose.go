// Package compose draws the synthetic ID photo: a cropped and masked avatar,
// placeholder clothing and a caption block on a sized canvas.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/disintegration/imaging"

	"idphoto/internal/domain"
	"idphoto/internal/enhance"
)

// Options configures a Composer.
type Options struct {
	// Now stamps the caption timestamp. Defaults to time.Now.
	Now func() time.Time
	// Locale selects caption language, "vi" or "en". Defaults to "vi".
	Locale string
}

// Composer is stateless apart from its options and safe for concurrent use.
type Composer struct {
	now    func() time.Time
	locale string
}

func New(opts Options) *Composer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locale == "" {
		opts.Locale = "vi"
	}
	return &Composer{now: opts.Now, locale: opts.Locale}
}

// Localized returns a copy that captions in locale. An empty locale keeps the
// current one.
func (c *Composer) Localized(locale string) *Composer {
	if locale == "" || locale == c.locale {
		return c
	}
	cp := *c
	cp.locale = locale
	return &cp
}

// Locale returns the caption locale.
func (c *Composer) Locale() string { return c.locale }

// Compose renders src onto a canvas of the given size class. Enhancement values
// are clamped to the form range before use.
func (c *Composer) Compose(src image.Image, size domain.SizeClass, style domain.StyleOptions, enh domain.EnhancementOptions) *image.NRGBA {
	width, height := size.Dimensions()
	g := AvatarGeometry(width, height)

	canvas := imaging.New(width, height, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if style.WantsGradient() {
		drawGradient(canvas)
	}
	drawBorder(canvas)

	if src != nil && g.AvatarSize > 0 {
		avatar := imaging.Resize(CropToSquare(src), g.Diameter(), g.Diameter(), imaging.Lanczos)
		avatar = enhance.Apply(avatar, enh.Clamped())
		draw.DrawMask(canvas, g.Avatar, avatar, image.Point{}, EllipseMask(g.Diameter()), image.Point{}, draw.Over)
	}

	switch a := style.Attire.(type) {
	case domain.FemaleAttire:
		drawFemale(canvas, g, a)
	case domain.MaleAttire:
		drawMale(canvas, g, a)
	default:
		drawMale(canvas, g, domain.DefaultMaleAttire)
	}

	c.drawCaptions(canvas, size, style.Gender())
	return canvas
}

// Captions returns the four caption lines in drawing order. Only the gender
// label follows the locale.
func (c *Composer) Captions(size domain.SizeClass, gender domain.Gender) [4]string {
	return [4]string{
		fmt.Sprintf("AI Photo - %s", gender.Label(c.locale)),
		fmt.Sprintf("Size: %s", size),
		"Enhanced Quality",
		c.now().Format("02/01/2006 15:04"),
	}
}

func (c *Composer) drawCaptions(canvas *image.NRGBA, size domain.SizeClass, gender domain.Gender) {
	width, height := canvas.Rect.Dx(), canvas.Rect.Dy()
	for i, line := range c.Captions(size, gender) {
		drawCentered(canvas, line, width/2, height-captionOffsets[i], captionColors[i])
	}
}

func drawGradient(canvas *image.NRGBA) {
	width, height := canvas.Rect.Dx(), canvas.Rect.Dy()
	for y := 0; y < height; y++ {
		fill(canvas, image.Rect(0, y, width, y+1), GradientColor(y, height))
	}
}

// drawBorder outlines [5,5,W-5,H-5] with a 3px stroke growing inward.
func drawBorder(canvas *image.NRGBA) {
	const inset, stroke = 5, 3
	width, height := canvas.Rect.Dx(), canvas.Rect.Dy()
	x0, y0, x1, y1 := inset, inset, width-inset, height-inset
	if x1-x0 < 2*stroke || y1-y0 < 2*stroke {
		return
	}
	fill(canvas, rect(x0, y0, x1, y0+stroke-1), borderColor)
	fill(canvas, rect(x0, y1-stroke+1, x1, y1), borderColor)
	fill(canvas, rect(x0, y0, x0+stroke-1, y1), borderColor)
	fill(canvas, rect(x1-stroke+1, y0, x1, y1), borderColor)
}

func drawMale(canvas *image.NRGBA, g Geometry, a domain.MaleAttire) {
	height := canvas.Rect.Dy()
	suit := rect(g.Center.X-g.AvatarSize, g.ClothingY, g.Center.X+g.AvatarSize, height-100)
	fill(canvas, suit, SuitColor(a.SuitColor))

	// The tie keeps its full 80px even where the suit is shorter.
	tie := rect(g.Center.X-15, g.ClothingY, g.Center.X+15, g.ClothingY+80).Intersect(canvas.Rect)
	if tie.Empty() {
		return
	}
	fill(canvas, tie, tieColor)
	switch a.TieStyle {
	case "striped", "patterned":
		for y := tie.Min.Y + 6; y < tie.Max.Y; y += 12 {
			fill(canvas, image.Rect(tie.Min.X, y, tie.Max.X, y+4).Intersect(tie), tieAccent)
		}
	case "polka_dot":
		for y := tie.Min.Y + 6; y < tie.Max.Y; y += 12 {
			for x := tie.Min.X + 5; x < tie.Max.X; x += 10 {
				fill(canvas, image.Rect(x-2, y-2, x+2, y+2).Intersect(tie), tieAccent)
			}
		}
	}
}

func drawFemale(canvas *image.NRGBA, g Geometry, a domain.FemaleAttire) {
	height := canvas.Rect.Dy()
	block := rect(g.Center.X-g.AvatarSize-10, g.ClothingY, g.Center.X+g.AvatarSize+10, height-100)
	fill(canvas, block, FemaleColor(a.Color))
}

func fill(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}
