package handlers

import (
	"net/http"

	"idphoto/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sizeOption struct {
	Class  domain.SizeClass `json:"class"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
}

// Options lists every choice the upload form offers together with the
// defaults and upload limits.
func (a *App) Options(w http.ResponseWriter, r *http.Request) {
	sizes := make([]sizeOption, 0, len(domain.SizeClasses()))
	for _, s := range domain.SizeClasses() {
		width, height := s.Dimensions()
		sizes = append(sizes, sizeOption{Class: s, Width: width, Height: height})
	}
	profile := a.Pipeline.Validator().Profile()
	a.json(w, http.StatusOK, map[string]any{
		"genders":     []domain.Gender{domain.GenderMale, domain.GenderFemale},
		"photo_sizes": sizes,
		"male": map[string]any{
			"suit_style": []string{"classic", "modern", "slim_fit", "sport"},
			"suit_color": []string{"navy", "black", "gray", "charcoal", "brown"},
			"tie_style":  []string{"solid", "striped", "polka_dot", "patterned"},
			"defaults":   domain.DefaultMaleAttire,
		},
		"female": map[string]any{
			"female_outfit": []string{"blazer", "shirt", "office_dress", "sweater", "light_jacket"},
			"female_color":  []string{"white", "black", "navy", "pink", "blue", "beige"},
			"background":    []string{"white", "blue", "gray", "beige", "gradient"},
			"defaults":      domain.DefaultFemaleAttire,
		},
		"enhancement": map[string]any{
			"min":      domain.MinEnhancement,
			"max":      domain.MaxEnhancement,
			"defaults": domain.DefaultEnhancement,
		},
		"upload": map[string]any{
			"profile":    profile.Name,
			"extensions": profile.Extensions,
			"max_bytes":  profile.MaxBytes,
			"max_batch":  a.Pipeline.MaxBatch(),
		},
	})
}
