package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSizeClassDimensions(t *testing.T) {
	tests := []struct {
		class         SizeClass
		width, height int
	}{
		{Size4x6, 400, 600},
		{Size3x4, 300, 400},
		{Size2x3, 200, 300},
		{Size5x7, 500, 700},
		{Size35x45, 350, 450},
		{"9x13", 400, 600},
		{"", 400, 600},
	}
	for _, tc := range tests {
		w, h := tc.class.Dimensions()
		if w != tc.width || h != tc.height {
			t.Fatalf("%q.Dimensions() = %dx%d, want %dx%d", tc.class, w, h, tc.width, tc.height)
		}
	}
}

func TestParseStyleOptionsDefaults(t *testing.T) {
	male, err := ParseStyleOptions(GenderMale, nil)
	if err != nil {
		t.Fatalf("ParseStyleOptions male: %v", err)
	}
	if male.PhotoSize != Size4x6 {
		t.Fatalf("photo size = %q, want 4x6", male.PhotoSize)
	}
	if got := male.Attire.(MaleAttire); got != DefaultMaleAttire {
		t.Fatalf("male attire = %+v, want %+v", got, DefaultMaleAttire)
	}

	female, err := ParseStyleOptions(GenderFemale, map[string]string{"photo_size": "35x45mm"})
	if err != nil {
		t.Fatalf("ParseStyleOptions female: %v", err)
	}
	if got := female.Attire.(FemaleAttire); got != DefaultFemaleAttire {
		t.Fatalf("female attire = %+v, want %+v", got, DefaultFemaleAttire)
	}
	if female.Gender() != GenderFemale {
		t.Fatalf("gender = %q", female.Gender())
	}
}

func TestParseStyleOptionsNormalizesFormLabels(t *testing.T) {
	opts, err := ParseStyleOptions(GenderFemale, map[string]string{
		"photo_size":    "3x4 (7.5x10cm)",
		"female_outfit": "Office Dress",
		"female_color":  "PINK",
		"background":    "gradient",
		"unknown_key":   "ignored",
	})
	if err != nil {
		t.Fatalf("ParseStyleOptions: %v", err)
	}
	want := FemaleAttire{Outfit: "office_dress", Color: "pink", Background: "gradient"}
	if opts.Attire.(FemaleAttire) != want {
		t.Fatalf("attire = %+v, want %+v", opts.Attire, want)
	}
	if opts.PhotoSize != Size3x4 {
		t.Fatalf("photo size = %q", opts.PhotoSize)
	}
	if !opts.WantsGradient() {
		t.Fatalf("gradient background should be requested")
	}
}

func TestParseStyleOptionsPlainBackgrounds(t *testing.T) {
	for _, bg := range []string{"white", "gray", "Beige"} {
		opts, err := ParseStyleOptions(GenderFemale, map[string]string{"background": bg})
		if err != nil {
			t.Fatalf("background %q: %v", bg, err)
		}
		if opts.WantsGradient() {
			t.Fatalf("background %q should render plain", bg)
		}
	}
}

func TestParseStyleOptionsRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		gender Gender
		raw    map[string]string
	}{
		{"suit color", GenderMale, map[string]string{"suit_color": "purple"}},
		{"tie style", GenderMale, map[string]string{"tie_style": "bow"}},
		{"background", GenderFemale, map[string]string{"background": "forest"}},
		{"photo size", GenderFemale, map[string]string{"photo_size": "10x10"}},
		{"gender", Gender("other"), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStyleOptions(tc.gender, tc.raw)
			if !errors.Is(err, ErrInvalidStyle) {
				t.Fatalf("err = %v, want ErrInvalidStyle", err)
			}
		})
	}
}

func TestParseGender(t *testing.T) {
	for raw, want := range map[string]Gender{"male": GenderMale, "Nam": GenderMale, "FEMALE": GenderFemale, "Nữ": GenderFemale} {
		got, err := ParseGender(raw)
		if err != nil || got != want {
			t.Fatalf("ParseGender(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseGender("robot"); !errors.Is(err, ErrInvalidStyle) {
		t.Fatalf("ParseGender(robot) err = %v", err)
	}
}

func TestGenderLabel(t *testing.T) {
	if got := GenderMale.Label("en"); got != "Male" {
		t.Fatalf("en label = %q", got)
	}
	if got := GenderFemale.Label("vi"); got != "Nữ" {
		t.Fatalf("vi label = %q", got)
	}
}

func TestStyleOptionsJSON(t *testing.T) {
	opts := StyleOptions{PhotoSize: Size4x6, Attire: DefaultMaleAttire}
	raw := opts.JSON()
	for _, want := range []string{`"photo_size":"4x6"`, `"suit_color":"navy"`, `"tie_style":"solid"`} {
		if !strings.Contains(raw, want) {
			t.Fatalf("JSON() = %s, missing %s", raw, want)
		}
	}
}

func TestEnhancementClamped(t *testing.T) {
	got := EnhancementOptions{Brightness: 80, Contrast: -90, Sharpness: 10, Saturation: 50}.Clamped()
	want := EnhancementOptions{Brightness: 50, Contrast: -50, Sharpness: 10, Saturation: 50}
	if got != want {
		t.Fatalf("Clamped() = %+v, want %+v", got, want)
	}
	if !(EnhancementOptions{}).IsNeutral() {
		t.Fatalf("zero options should be neutral")
	}
	if DefaultEnhancement.IsNeutral() {
		t.Fatalf("default enhancement should not be neutral")
	}
}

func TestBatchResultStats(t *testing.T) {
	res := BatchResult{Outcomes: []BatchOutcome{
		{Index: 0, Filename: "a.jpg", Photo: &GeneratedPhoto{Duration: time.Second}},
		{Index: 1, Filename: "b.jpg", Err: ErrCorruptImage},
		{Index: 2, Filename: "c.jpg", Photo: &GeneratedPhoto{Duration: 3 * time.Second}},
	}}
	if n := len(res.Succeeded()); n != 2 {
		t.Fatalf("succeeded = %d", n)
	}
	if n := len(res.Failed()); n != 1 {
		t.Fatalf("failed = %d", n)
	}
	if got := res.AverageProcessing(); got != 2*time.Second {
		t.Fatalf("average = %s", got)
	}
	if got := res.Throughput(); got != 0.5 {
		t.Fatalf("throughput = %v", got)
	}
}
