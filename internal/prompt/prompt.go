// Package prompt renders the text description stored alongside each generated
// photo.
package prompt

import (
	"fmt"
	"strings"

	"idphoto/internal/domain"
)

const (
	preamble = "Create a professional ID photo with %s dimensions, 300 DPI resolution."
	closing  = "Professional portrait photography, soft lighting, high resolution, passport photo quality."
)

// Build describes style in plain English. A nil attire is treated as the male
// defaults and an empty size as 4x6.
func Build(style domain.StyleOptions) string {
	size := style.PhotoSize
	if size == "" {
		size = domain.DefaultSize
	}
	parts := []string{fmt.Sprintf(preamble, size)}

	switch a := style.Attire.(type) {
	case domain.FemaleAttire:
		d := domain.DefaultFemaleAttire
		outfit := value(a.Outfit, d.Outfit)
		color := value(a.Color, d.Color)
		background := value(a.Background, d.Background)
		parts = append(parts,
			fmt.Sprintf("Female subject wearing a %s %s.", color, outfit),
			fmt.Sprintf("Professional business attire with %s background.", background),
		)
	default:
		m, _ := style.Attire.(domain.MaleAttire)
		d := domain.DefaultMaleAttire
		parts = append(parts,
			fmt.Sprintf("Male subject wearing a %s %s business suit with a %s necktie.",
				value(m.SuitStyle, d.SuitStyle), value(m.SuitColor, d.SuitColor), value(m.TieStyle, d.TieStyle)),
			"Professional formal attire, clean white background.",
			"IMPORTANT: Keep original facial features exactly the same, only enhance appearance.",
		)
	}

	parts = append(parts, closing)
	return strings.Join(parts, " ")
}

// value falls back to def when v is blank and shows underscores as spaces.
func value(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		v = def
	}
	return strings.ReplaceAll(v, "_", " ")
}
