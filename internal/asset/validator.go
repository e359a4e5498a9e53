// Package asset validates uploaded photos before composition.
package asset

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"idphoto/internal/domain"
)

// MinDimension is the smallest accepted width and height in pixels.
const MinDimension = 100

// Profile bundles the upload limits of one deployment tier.
type Profile struct {
	Name       string
	Extensions []string
	MaxBytes   int64
}

// BasicProfile accepts the common web formats up to 5 MB.
func BasicProfile() Profile {
	return Profile{
		Name:       "basic",
		Extensions: []string{"jpg", "jpeg", "png", "webp", "bmp"},
		MaxBytes:   5 * 1024 * 1024,
	}
}

// AdvancedProfile adds TIFF and raises the limit to 10 MB.
func AdvancedProfile() Profile {
	return Profile{
		Name:       "advanced",
		Extensions: []string{"jpg", "jpeg", "png", "webp", "bmp", "tiff"},
		MaxBytes:   10 * 1024 * 1024,
	}
}

// ProfileByName resolves "basic" or "advanced".
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic":
		return BasicProfile(), nil
	case "advanced", "":
		return AdvancedProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown upload profile %q", name)
	}
}

// Allows reports whether ext (without dot, any case) is accepted.
func (p Profile) Allows(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range p.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// allowsFormat maps a decoder format name onto the extension list.
func (p Profile) allowsFormat(format string) bool {
	if format == "jpeg" {
		return p.Allows("jpg") || p.Allows("jpeg")
	}
	return p.Allows(format)
}

// Validated is a successfully decoded asset.
type Validated struct {
	Asset  *domain.UploadedAsset
	Image  image.Image
	Format string
	Width  int
	Height int
}

// Rejected pairs an asset with the reason it failed validation.
type Rejected struct {
	Asset *domain.UploadedAsset
	Err   error
}

// Partition is the result of validating many assets.
type Partition struct {
	Valid   []Validated
	Invalid []Rejected
}

// ValidAssets returns the uploaded assets that passed, in input order.
func (p Partition) ValidAssets() []domain.UploadedAsset {
	out := make([]domain.UploadedAsset, 0, len(p.Valid))
	for _, v := range p.Valid {
		out = append(out, *v.Asset)
	}
	return out
}

// Validator checks uploads against a Profile. It holds no per-asset state.
type Validator struct {
	profile Profile
}

func NewValidator(profile Profile) *Validator {
	return &Validator{profile: profile}
}

// Profile returns the configured limits.
func (v *Validator) Profile() Profile { return v.profile }

// Validate runs the checks in order and stops at the first failure. Errors are
// *domain.AssetError values.
func (v *Validator) Validate(a *domain.UploadedAsset) (Validated, error) {
	if a == nil || (a.Filename == "" && len(a.Data) == 0) {
		return Validated{}, reject(domain.ErrMissingAsset, "", "no file was uploaded")
	}

	ext := extension(a.Filename)
	if !v.profile.Allows(ext) {
		return Validated{}, reject(domain.ErrUnsupportedFormat, a.Filename,
			fmt.Sprintf("unsupported format %q, allowed: %s", ext, strings.Join(v.profile.Extensions, ", ")))
	}

	if a.DeclaredSize() > v.profile.MaxBytes {
		return Validated{}, reject(domain.ErrFileTooLarge, a.Filename,
			fmt.Sprintf("file too large, maximum %dMB", v.profile.MaxBytes/(1024*1024)))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return Validated{}, reject(domain.ErrCorruptImage, a.Filename, "invalid image file: "+err.Error())
	}
	if !v.profile.allowsFormat(format) {
		return Validated{}, reject(domain.ErrUnsupportedFormat, a.Filename,
			fmt.Sprintf("content is %s, allowed: %s", format, strings.Join(v.profile.Extensions, ", ")))
	}
	if cfg.Width < MinDimension || cfg.Height < MinDimension {
		return Validated{}, reject(domain.ErrImageTooSmall, a.Filename,
			fmt.Sprintf("image too small (%dx%d), minimum %dx%dpx", cfg.Width, cfg.Height, MinDimension, MinDimension))
	}

	img, err := imaging.Decode(a.Open(), imaging.AutoOrientation(true))
	if err != nil {
		return Validated{}, reject(domain.ErrCorruptImage, a.Filename, "invalid image file: "+err.Error())
	}
	b := img.Bounds()
	if b.Dx() < MinDimension || b.Dy() < MinDimension {
		return Validated{}, reject(domain.ErrImageTooSmall, a.Filename,
			fmt.Sprintf("image too small (%dx%d), minimum %dx%dpx", b.Dx(), b.Dy(), MinDimension, MinDimension))
	}

	return Validated{Asset: a, Image: img, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// ValidateMany validates every asset and never stops at the first failure.
func (v *Validator) ValidateMany(assets []domain.UploadedAsset) Partition {
	var p Partition
	for i := range assets {
		a := &assets[i]
		res, err := v.Validate(a)
		if err != nil {
			p.Invalid = append(p.Invalid, Rejected{Asset: a, Err: err})
			continue
		}
		p.Valid = append(p.Valid, res)
	}
	return p
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func reject(kind error, filename, reason string) error {
	return &domain.AssetError{Kind: kind, Filename: filename, Reason: reason}
}
