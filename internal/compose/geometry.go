package compose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Geometry is the layout derived from the canvas size.
type Geometry struct {
	// AvatarSize is the avatar radius; the avatar box is twice this wide.
	AvatarSize int
	Center     image.Point
	Avatar     image.Rectangle
	ClothingY  int
}

// Diameter returns the side of the avatar box.
func (g Geometry) Diameter() int { return g.AvatarSize * 2 }

// AvatarGeometry places the avatar centred horizontally at one third of the
// canvas height.
func AvatarGeometry(width, height int) Geometry {
	size := min(width/3, height/4)
	c := image.Pt(width/2, height/3)
	return Geometry{
		AvatarSize: size,
		Center:     c,
		Avatar:     image.Rect(c.X-size, c.Y-size, c.X+size, c.Y+size),
		ClothingY:  c.Y + size,
	}
}

// CropToSquare cuts the largest centred square out of img. Odd remainders are
// dropped from the right and bottom.
func CropToSquare(img image.Image) *image.NRGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	return imaging.CropCenter(img, side, side)
}

// EllipseMask returns a diameter x diameter alpha mask that is opaque inside
// the inscribed ellipse and transparent in the corners.
func EllipseMask(diameter int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, diameter, diameter))
	if diameter <= 0 {
		return mask
	}
	r := float64(diameter) / 2
	for y := 0; y < diameter; y++ {
		dy := (float64(y) + 0.5 - r) / r
		for x := 0; x < diameter; x++ {
			dx := (float64(x) + 0.5 - r) / r
			if dx*dx+dy*dy <= 1 {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}

// rect converts inclusive corner coordinates to a half-open rectangle.
func rect(x0, y0, x1, y1 int) image.Rectangle {
	return image.Rect(x0, y0, x1+1, y1+1)
}
