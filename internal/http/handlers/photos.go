package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"idphoto/internal/domain"
	"idphoto/internal/export"
)

type photoView struct {
	ID                string            `json:"id"`
	SourceFilename    string            `json:"source_filename"`
	GeneratedFilename string            `json:"generated_filename"`
	StorageKey        string            `json:"storage_key,omitempty"`
	Gender            domain.Gender     `json:"gender"`
	Options           map[string]string `json:"options"`
	Prompt            string            `json:"prompt"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	SourceSize        int64             `json:"source_size"`
	ProcessingTime    float64           `json:"processing_time"`
	CreatedAt         time.Time         `json:"created_at"`
	DownloadURL       string            `json:"download_url"`
}

func newPhotoView(p *domain.GeneratedPhoto) photoView {
	return photoView{
		ID:                p.ID,
		SourceFilename:    p.SourceFilename,
		GeneratedFilename: p.GeneratedFilename,
		StorageKey:        p.StorageKey,
		Gender:            p.Gender(),
		Options:           p.Style.Map(),
		Prompt:            p.Prompt,
		Width:             p.Width,
		Height:            p.Height,
		SourceSize:        p.SourceSize,
		ProcessingTime:    p.Duration.Seconds(),
		CreatedAt:         p.CreatedAt,
		DownloadURL:       "/v1/photos/" + p.ID + "/download",
	}
}

// PhotosCreate composes one ID photo from the "file" field.
func (a *App) PhotosCreate(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.Pipeline.Validator().Profile().MaxBytes
	if err := parseUpload(w, r, maxBytes+multipartMemory); err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := parseRequest(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		a.fail(w, r, &domain.AssetError{Kind: domain.ErrMissingAsset, Reason: "file is required"})
		return
	}
	asset, err := readAsset(files[0])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	photo, err := a.Pipeline.Generate(r.Context(), &asset, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Cache.PutPhoto(photo)
	a.json(w, http.StatusCreated, newPhotoView(photo))
}

// PhotoDownload serves a cached photo as JPEG (default) or PNG.
func (a *App) PhotoDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, ok := a.Cache.Photo(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "photo not found or expired")
		return
	}
	var (
		data        []byte
		err         error
		ext         string
		contentType string
	)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "jpg", "jpeg":
		data, err = export.JPEG(photo.Image)
		ext, contentType = "jpg", "image/jpeg"
	case "png":
		data, err = export.PNG(photo.Image)
		ext, contentType = "png", "image/png"
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "format must be jpeg or png")
		return
	}
	if err != nil {
		a.fail(w, r, errors.Join(domain.ErrStorageFailure, err))
		return
	}
	a.attachment(w, contentType, export.PhotoFilename(photo.Gender(), ext, a.now()), data)
}
