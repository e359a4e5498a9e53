package compose

import (
	"image/color"
	"strconv"
)

var (
	borderColor   = hex("#DDDDDD")
	tieColor      = hex("#8B0000")
	tieAccent     = hex("#C0392B")
	defaultSuit   = hex("#2C3E50")
	defaultFemale = hex("#2196F3")

	captionColors = [4]color.NRGBA{hex("#2C3E50"), hex("#34495E"), hex("#7F8C8D"), hex("#95A5A6")}
)

var suitColors = map[string]color.NRGBA{
	"navy":     hex("#2C3E50"),
	"black":    hex("#1B1B1B"),
	"gray":     hex("#5D6D7E"),
	"charcoal": hex("#36454F"),
	"brown":    hex("#5D4037"),
}

var femaleColors = map[string]color.NRGBA{
	"white": hex("#FFFFFF"),
	"black": hex("#2C3E50"),
	"navy":  hex("#34495E"),
	"pink":  hex("#E91E63"),
	"blue":  hex("#2196F3"),
	"beige": hex("#F5F5DC"),
}

// SuitColor resolves a suit colour name, defaulting to dark navy.
func SuitColor(name string) color.NRGBA {
	if c, ok := suitColors[name]; ok {
		return c
	}
	return defaultSuit
}

// FemaleColor resolves an outfit colour name, defaulting to blue.
func FemaleColor(name string) color.NRGBA {
	if c, ok := femaleColors[name]; ok {
		return c
	}
	return defaultFemale
}

// GradientColor is the background colour of scanline y on a canvas of the
// given height.
func GradientColor(y, height int) color.NRGBA {
	blue := 200
	if height > 0 {
		blue = int(200 + float64(y)/float64(height)*55)
	}
	return color.NRGBA{R: 100, G: 150, B: uint8(blue), A: 255}
}

// hex parses "#RRGGBB". It panics on malformed input and is only used for
// package level tables.
func hex(s string) color.NRGBA {
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil || len(s) != 7 {
		panic("compose: bad colour " + s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
