package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"idphoto/internal/domain"
	"idphoto/internal/middleware"
	"idphoto/internal/pipeline"
)

const multipartMemory = 32 << 20

var styleKeys = []string{"photo_size", "suit_style", "suit_color", "tie_style", "female_outfit", "female_color", "background"}

// parseUpload limits the body to maxBody bytes and parses the multipart form.
func parseUpload(w http.ResponseWriter, r *http.Request, maxBody int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &domain.AssetError{Kind: domain.ErrFileTooLarge, Reason: fmt.Sprintf("request exceeds %d bytes", maxBody)}
		}
		return &domain.AssetError{Kind: domain.ErrMissingAsset, Reason: "invalid multipart form"}
	}
	return nil
}

func readAsset(fh *multipart.FileHeader) (domain.UploadedAsset, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.UploadedAsset{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.UploadedAsset{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.UploadedAsset{Filename: fh.Filename, Size: fh.Size, Data: data}, nil
}

// parseRequest reads gender, style and enhancement fields shared by the photo
// and batch endpoints. Gender defaults to male.
func parseRequest(r *http.Request) (pipeline.Request, error) {
	gender := domain.GenderMale
	if raw := r.FormValue("gender"); strings.TrimSpace(raw) != "" {
		g, err := domain.ParseGender(raw)
		if err != nil {
			return pipeline.Request{}, err
		}
		gender = g
	}
	raw := make(map[string]string, len(styleKeys))
	for _, k := range styleKeys {
		raw[k] = r.FormValue(k)
	}
	style, err := domain.ParseStyleOptions(gender, raw)
	if err != nil {
		return pipeline.Request{}, err
	}
	enh, err := parseEnhancement(r)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Style:       style,
		Enhancement: enh,
		Locale:      middleware.LocaleFromContext(r.Context()),
	}, nil
}

func parseEnhancement(r *http.Request) (domain.EnhancementOptions, error) {
	opts := domain.DefaultEnhancement
	ints := map[string]*int{
		"brightness": &opts.Brightness,
		"contrast":   &opts.Contrast,
		"sharpness":  &opts.Sharpness,
		"saturation": &opts.Saturation,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(r.FormValue(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidStyle, key)
		}
		*dst = n
	}
	if v := strings.TrimSpace(r.FormValue("noise_reduction")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: noise_reduction must be a boolean", domain.ErrInvalidStyle)
		}
		opts.NoiseReduction = b
	}
	return opts.Clamped(), nil
}

// parseHistoryFilter accepts dates as YYYY-MM-DD or RFC 3339. A bare "to" date
// includes the whole day.
func parseHistoryFilter(r *http.Request, defaultLimit int) (domain.HistoryFilter, error) {
	q := r.URL.Query()
	f := domain.HistoryFilter{Limit: defaultLimit, FilenameContains: strings.TrimSpace(q.Get("q"))}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("limit must be a positive integer")
		}
		f.Limit = n
	}
	if v := q.Get("gender"); v != "" && v != "all" {
		g, err := domain.ParseGender(v)
		if err != nil {
			return f, err
		}
		f.Gender = g
	}
	var err error
	if f.From, err = domain.ParseDate(q.Get("from"), false); err != nil {
		return f, err
	}
	if f.To, err = domain.ParseDate(q.Get("to"), true); err != nil {
		return f, err
	}
	return f, nil
}
