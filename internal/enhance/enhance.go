// Package enhance applies the tonal adjustments offered on the upload form.
package enhance

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"idphoto/internal/domain"
)

// NoiseRadius is the blur sigma used for noise reduction.
const NoiseRadius = 0.5

// smooth is the 3x3 kernel whose output sharpness is extrapolated away from.
var smooth = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// Apply returns an adjusted copy of img. Steps run in a fixed order:
// brightness, contrast, sharpness, saturation, then noise reduction. A zero
// value skips its step. img is never modified.
func Apply(img image.Image, opts domain.EnhancementOptions) *image.NRGBA {
	out := imaging.Clone(img)
	if opts.Brightness != 0 {
		out = blend(imaging.New(out.Rect.Dx(), out.Rect.Dy(), color.NRGBA{A: 255}), out, factor(opts.Brightness))
	}
	if opts.Contrast != 0 {
		grey := meanLuminance(out)
		out = blend(imaging.New(out.Rect.Dx(), out.Rect.Dy(), color.NRGBA{R: grey, G: grey, B: grey, A: 255}), out, factor(opts.Contrast))
	}
	if opts.Sharpness != 0 {
		out = blend(smoothed(out), out, factor(opts.Sharpness))
	}
	if opts.Saturation != 0 {
		out = blend(imaging.Grayscale(out), out, factor(opts.Saturation))
	}
	if opts.NoiseReduction {
		out = imaging.Blur(out, NoiseRadius)
	}
	return out
}

// smoothed convolves img with the smooth kernel. The outermost ring keeps the
// source pixels, so sharpening never alters the image edge.
func smoothed(img *image.NRGBA) *image.NRGBA {
	base := imaging.Convolve3x3(img, smooth, &imaging.ConvolveOptions{Normalize: true})
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for x := 0; x < w; x++ {
		base.SetNRGBA(x, 0, img.NRGBAAt(x, 0))
		base.SetNRGBA(x, h-1, img.NRGBAAt(x, h-1))
	}
	for y := 0; y < h; y++ {
		base.SetNRGBA(0, y, img.NRGBAAt(0, y))
		base.SetNRGBA(w-1, y, img.NRGBAAt(w-1, y))
	}
	return base
}

// factor maps a signed percentage onto an enhancement multiplier.
func factor(v int) float64 {
	return 1 + float64(v)/100
}

// blend interpolates from base toward img by f; f > 1 extrapolates. Alpha is
// taken from img.
func blend(base, img *image.NRGBA, f float64) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for y := 0; y < dst.Rect.Dy(); y++ {
		bi := y * base.Stride
		ii := y * img.Stride
		di := y * dst.Stride
		for x := 0; x < dst.Rect.Dx(); x++ {
			for c := 0; c < 3; c++ {
				b := float64(base.Pix[bi+c])
				v := b + f*(float64(img.Pix[ii+c])-b)
				dst.Pix[di+c] = clamp8(v)
			}
			dst.Pix[di+3] = img.Pix[ii+3]
			bi += 4
			ii += 4
			di += 4
		}
	}
	return dst
}

// meanLuminance averages the ITU-R 601 luma of every pixel, rounded.
func meanLuminance(img *image.NRGBA) uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	var sum int64
	for y := 0; y < h; y++ {
		i := y * img.Stride
		for x := 0; x < w; x++ {
			r, g, b := int64(img.Pix[i]), int64(img.Pix[i+1]), int64(img.Pix[i+2])
			sum += (r*299 + g*587 + b*114) / 1000
			i += 4
		}
	}
	return uint8(float64(sum)/float64(w*h) + 0.5)
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
