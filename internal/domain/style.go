package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender selects the attire variant and caption label.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts the canonical keys plus the Vietnamese labels used by the
// upload form.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m", "nam":
		return GenderMale, nil
	case "female", "f", "nữ", "nu":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("%w: gender %q", ErrInvalidStyle, raw)
	}
}

// Label returns the caption label for the locale ("vi" or "en").
func (g Gender) Label(locale string) string {
	if locale == "vi" {
		if g == GenderMale {
			return "Nam"
		}
		return "Nữ"
	}
	return cases.Title(language.English).String(string(g))
}

// SizeClass names a physical photo size.
type SizeClass string

const (
	Size4x6    SizeClass = "4x6"
	Size3x4    SizeClass = "3x4"
	Size2x3    SizeClass = "2x3"
	Size5x7    SizeClass = "5x7"
	Size35x45  SizeClass = "35x45mm"
	DefaultSize          = Size4x6
)

var sizeTable = map[SizeClass][2]int{
	Size4x6:   {400, 600},
	Size3x4:   {300, 400},
	Size2x3:   {200, 300},
	Size5x7:   {500, 700},
	Size35x45: {350, 450},
}

// SizeClasses lists the supported classes in display order.
func SizeClasses() []SizeClass {
	return []SizeClass{Size4x6, Size3x4, Size2x3, Size5x7, Size35x45}
}

// Known reports whether s is in the size table.
func (s SizeClass) Known() bool {
	_, ok := sizeTable[s]
	return ok
}

// Dimensions returns the canvas size in pixels. Unknown classes use 4x6.
func (s SizeClass) Dimensions() (width, height int) {
	dims, ok := sizeTable[s]
	if !ok {
		dims = sizeTable[DefaultSize]
	}
	return dims[0], dims[1]
}

// Attire is the gender specific half of StyleOptions. Only MaleAttire and
// FemaleAttire implement it.
type Attire interface {
	Gender() Gender
	options() map[string]string
}

// MaleAttire describes the suit drawn for male photos.
type MaleAttire struct {
	SuitStyle string `json:"suit_style" validate:"oneof=classic modern slim_fit sport"`
	SuitColor string `json:"suit_color" validate:"oneof=navy black gray charcoal brown"`
	TieStyle  string `json:"tie_style" validate:"oneof=solid striped polka_dot patterned"`
}

func (MaleAttire) Gender() Gender { return GenderMale }

func (m MaleAttire) options() map[string]string {
	return map[string]string{"suit_style": m.SuitStyle, "suit_color": m.SuitColor, "tie_style": m.TieStyle}
}

// FemaleAttire describes the outfit and background for female photos.
type FemaleAttire struct {
	Outfit     string `json:"female_outfit" validate:"oneof=blazer shirt office_dress sweater light_jacket"`
	Color      string `json:"female_color" validate:"oneof=white black navy pink blue beige"`
	Background string `json:"background" validate:"oneof=white blue gray beige gradient"`
}

func (FemaleAttire) Gender() Gender { return GenderFemale }

func (f FemaleAttire) options() map[string]string {
	return map[string]string{"female_outfit": f.Outfit, "female_color": f.Color, "background": f.Background}
}

// Defaults applied when an option key is missing.
var (
	DefaultMaleAttire   = MaleAttire{SuitStyle: "classic", SuitColor: "navy", TieStyle: "solid"}
	DefaultFemaleAttire = FemaleAttire{Outfit: "blazer", Color: "white", Background: "white"}
)

// StyleOptions is the full style selection shared by every item of a request.
type StyleOptions struct {
	PhotoSize SizeClass
	Attire    Attire
}

// Gender returns the gender implied by the attire variant.
func (s StyleOptions) Gender() Gender {
	if s.Attire == nil {
		return GenderMale
	}
	return s.Attire.Gender()
}

// WantsGradient reports whether the background should be the blue gradient.
func (s StyleOptions) WantsGradient() bool {
	f, ok := s.Attire.(FemaleAttire)
	return ok && (f.Background == "blue" || f.Background == "gradient")
}

// Map flattens the options to the key/value shape stored in history.
func (s StyleOptions) Map() map[string]string {
	out := map[string]string{"photo_size": string(s.PhotoSize)}
	if s.Attire != nil {
		for k, v := range s.Attire.options() {
			out[k] = v
		}
	}
	return out
}

// JSON encodes Map for the history options column.
func (s StyleOptions) JSON() string {
	raw, err := json.Marshal(s.Map())
	if err != nil {
		return "{}"
	}
	return string(raw)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func styleValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every enumerated field.
func (s StyleOptions) Validate() error {
	if !s.PhotoSize.Known() {
		return fmt.Errorf("%w: photo_size %q", ErrInvalidStyle, s.PhotoSize)
	}
	if s.Attire == nil {
		return fmt.Errorf("%w: attire is required", ErrInvalidStyle)
	}
	if err := styleValidator().Struct(s.Attire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	return nil
}

// ParseStyleOptions builds StyleOptions from form values. A missing key takes
// its default; a present value outside its enumeration is ErrInvalidStyle.
// Unrecognised keys are ignored.
func ParseStyleOptions(gender Gender, raw map[string]string) (StyleOptions, error) {
	get := func(key, fallback string) string {
		if v := normalizeOption(raw[key]); v != "" {
			return v
		}
		return fallback
	}
	opts := StyleOptions{PhotoSize: SizeClass(get("photo_size", string(DefaultSize)))}
	switch gender {
	case GenderMale:
		d := DefaultMaleAttire
		opts.Attire = MaleAttire{
			SuitStyle: get("suit_style", d.SuitStyle),
			SuitColor: get("suit_color", d.SuitColor),
			TieStyle:  get("tie_style", d.TieStyle),
		}
	case GenderFemale:
		d := DefaultFemaleAttire
		opts.Attire = FemaleAttire{
			Outfit:     get("female_outfit", d.Outfit),
			Color:      get("female_color", d.Color),
			Background: get("background", d.Background),
		}
	default:
		return StyleOptions{}, fmt.Errorf("%w: gender %q", ErrInvalidStyle, gender)
	}
	if err := opts.Validate(); err != nil {
		return StyleOptions{}, err
	}
	return opts, nil
}

// normalizeOption lowercases and turns spaces into underscores, the shape the
// upload form posts.
func normalizeOption(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	// "4x6 (10x15cm)" style labels carry the class as the first word.
	if i := strings.IndexByte(v, ' '); i > 0 && strings.Contains(v, "(") {
		v = v[:i]
	}
	return strings.ReplaceAll(v, " ", "_")
}
