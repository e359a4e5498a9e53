package compose

import (
	"image"
	"image/color"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var captionFace = basicfont.Face7x13

// captionOffsets are distances from the bottom edge for the four lines.
var captionOffsets = [4]int{80, 60, 40, 20}

// ASCIIFold strips diacritics so captions render with the bitmap face.
// Runes without an ASCII base become '?'.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == 'đ':
			return 'd'
		case r == 'Đ':
			return 'D'
		case r < 0x20 || r > 0x7e:
			return '?'
		}
		return r
	}, folded)
}

// drawCentered draws s with its midpoint at (cx, cy).
func drawCentered(dst *image.NRGBA, s string, cx, cy int, c color.Color) {
	s = ASCIIFold(s)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: captionFace,
	}
	m := captionFace.Metrics()
	width := d.MeasureString(s)
	baseline := fixed.I(cy) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - width/2, Y: baseline}
	d.DrawString(s)
}
