package domain

import (
	"bytes"
	"image"
	"io"
	"time"
)

// EnhancementOptions are signed percentage offsets; zero means no change.
type EnhancementOptions struct {
	Brightness     int  `json:"brightness"`
	Contrast       int  `json:"contrast"`
	Sharpness      int  `json:"sharpness"`
	Saturation     int  `json:"saturation"`
	NoiseReduction bool `json:"noise_reduction"`
}

// Slider bounds exposed by the upload form.
const (
	MinEnhancement = -50
	MaxEnhancement = 50
)

// DefaultEnhancement mirrors the form's initial slider positions.
var DefaultEnhancement = EnhancementOptions{Sharpness: 10, Saturation: 5, NoiseReduction: true}

// IsNeutral reports whether applying the options would leave pixels unchanged.
func (o EnhancementOptions) IsNeutral() bool {
	return o.Brightness == 0 && o.Contrast == 0 && o.Sharpness == 0 && o.Saturation == 0 && !o.NoiseReduction
}

// Clamped bounds every numeric knob to [MinEnhancement, MaxEnhancement].
func (o EnhancementOptions) Clamped() EnhancementOptions {
	o.Brightness = clampInt(o.Brightness, MinEnhancement, MaxEnhancement)
	o.Contrast = clampInt(o.Contrast, MinEnhancement, MaxEnhancement)
	o.Sharpness = clampInt(o.Sharpness, MinEnhancement, MaxEnhancement)
	o.Saturation = clampInt(o.Saturation, MinEnhancement, MaxEnhancement)
	return o
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UploadedAsset is a file as received from the caller. Size is the declared
// byte size; when zero the length of Data is used.
type UploadedAsset struct {
	Filename string
	Size     int64
	Data     []byte
}

// Open returns a reader positioned at the start of the asset bytes.
func (a *UploadedAsset) Open() io.Reader {
	return bytes.NewReader(a.Data)
}

// DeclaredSize returns Size, falling back to len(Data).
func (a *UploadedAsset) DeclaredSize() int64 {
	if a.Size > 0 {
		return a.Size
	}
	return int64(len(a.Data))
}

// GeneratedPhoto is the immutable result of one successful composition.
type GeneratedPhoto struct {
	ID                string
	SourceFilename    string
	GeneratedFilename string
	StorageKey        string
	Style             StyleOptions
	Prompt            string
	Image             image.Image
	Width             int
	Height            int
	SourceSize        int64
	Duration          time.Duration
	CreatedAt         time.Time
	Success           bool
}

// Gender is a shortcut for Style.Gender().
func (p *GeneratedPhoto) Gender() Gender { return p.Style.Gender() }

// BatchOutcome is the per-item result of a batch. Exactly one of Photo and Err
// is set. StorageErr records a history or file store failure that did not
// affect the generated photo.
type BatchOutcome struct {
	Index      int
	Filename   string
	Photo      *GeneratedPhoto
	Err        error
	StorageErr error
}

// OK reports whether the item produced a photo.
func (o BatchOutcome) OK() bool { return o.Err == nil && o.Photo != nil }

// BatchResult holds one outcome per input asset in input order.
type BatchResult struct {
	ID       string
	Outcomes []BatchOutcome
	Elapsed  time.Duration
}

// Succeeded returns the successful outcomes in input order.
func (r BatchResult) Succeeded() []BatchOutcome {
	var out []BatchOutcome
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the failed outcomes in input order.
func (r BatchResult) Failed() []BatchOutcome {
	var out []BatchOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// TotalProcessing sums the processing time of successful items.
func (r BatchResult) TotalProcessing() time.Duration {
	var total time.Duration
	for _, o := range r.Succeeded() {
		total += o.Photo.Duration
	}
	return total
}

// AverageProcessing is TotalProcessing divided by the success count.
func (r BatchResult) AverageProcessing() time.Duration {
	n := len(r.Succeeded())
	if n == 0 {
		return 0
	}
	return r.TotalProcessing() / time.Duration(n)
}

// Throughput returns successful photos per second of processing time.
func (r BatchResult) Throughput() float64 {
	total := r.TotalProcessing().Seconds()
	if total <= 0 {
		return 0
	}
	return float64(len(r.Succeeded())) / total
}
