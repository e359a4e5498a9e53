package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idphoto/internal/domain"
	"idphoto/internal/export"
)

type batchItemView struct {
	Index        int        `json:"index"`
	Filename     string     `json:"filename"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StorageError string     `json:"storage_error,omitempty"`
	Photo        *photoView `json:"photo,omitempty"`
}

type rejectedView struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type batchStatsView struct {
	Elapsed           float64 `json:"elapsed"`
	TotalProcessing   float64 `json:"total_processing_time"`
	AverageProcessing float64 `json:"avg_processing_time"`
	Throughput        float64 `json:"photos_per_second"`
}

type batchView struct {
	ID        string          `json:"id"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Warnings  []string        `json:"warnings,omitempty"`
	Rejected  []rejectedView  `json:"rejected,omitempty"`
	Items     []batchItemView `json:"items"`
	Stats     batchStatsView  `json:"stats"`
	ZipURL    string          `json:"zip_url,omitempty"`
}

func newBatchView(res domain.BatchResult) batchView {
	v := batchView{
		ID:        res.ID,
		Total:     len(res.Outcomes),
		Succeeded: len(res.Succeeded()),
		Failed:    len(res.Failed()),
		Items:     make([]batchItemView, 0, len(res.Outcomes)),
		Stats: batchStatsView{
			Elapsed:           res.Elapsed.Seconds(),
			TotalProcessing:   res.TotalProcessing().Seconds(),
			AverageProcessing: res.AverageProcessing().Seconds(),
			Throughput:        res.Throughput(),
		},
	}
	for _, o := range res.Outcomes {
		item := batchItemView{Index: o.Index, Filename: o.Filename, Status: "failed"}
		if o.OK() {
			pv := newPhotoView(o.Photo)
			item.Status, item.Photo = "ok", &pv
		} else if o.Err != nil {
			item.Error = o.Err.Error()
		}
		if o.StorageErr != nil {
			item.StorageError = o.StorageErr.Error()
		}
		v.Items = append(v.Items, item)
	}
	if v.Succeeded > 0 {
		v.ZipURL = "/v1/batches/" + res.ID + "/zip"
	}
	return v
}

// BatchesCreate processes every file in the "files" field. Files beyond the
// batch limit are dropped with a warning and files that fail validation are
// reported without being processed.
func (a *App) BatchesCreate(w http.ResponseWriter, r *http.Request) {
	maxBatch := a.Pipeline.MaxBatch()
	maxBytes := a.Pipeline.Validator().Profile().MaxBytes
	if err := parseUpload(w, r, maxBytes*int64(maxBatch)+multipartMemory); err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := parseRequest(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		a.fail(w, r, domain.ErrEmptyBatch)
		return
	}

	var warnings []string
	if len(files) > maxBatch {
		warnings = append(warnings, fmt.Sprintf("only the first %d of %d files were processed", maxBatch, len(files)))
		a.log(r).Warn().Int("received", len(files)).Int("max", maxBatch).Msg("batch truncated")
		files = files[:maxBatch]
	}

	assets := make([]domain.UploadedAsset, 0, len(files))
	for _, fh := range files {
		asset, err := readAsset(fh)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		assets = append(assets, asset)
	}

	partition := a.Pipeline.Validator().ValidateMany(assets)
	rejected := make([]rejectedView, 0, len(partition.Invalid))
	for _, rej := range partition.Invalid {
		rejected = append(rejected, rejectedView{Filename: rej.Asset.Filename, Error: rej.Err.Error()})
	}
	if len(partition.Valid) == 0 {
		a.json(w, http.StatusBadRequest, map[string]any{
			"error":    "invalid_asset",
			"message":  "no valid files in batch",
			"rejected": rejected,
		})
		return
	}

	res, err := a.Pipeline.ProcessBatch(r.Context(), partition.ValidAssets(), req, nil)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Cache.PutBatch(res)

	view := newBatchView(res)
	view.Warnings = warnings
	if len(rejected) > 0 {
		view.Rejected = rejected
	}
	a.json(w, http.StatusCreated, view)
}

// BatchZip archives the successful photos of a cached batch.
func (a *App) BatchZip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, ok := a.Cache.Batch(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "batch not found or expired")
		return
	}
	if len(res.Succeeded()) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch has no generated photos")
		return
	}
	archive, err := export.BatchZip(res)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.attachment(w, "application/zip", export.BatchZipFilename(a.now()), archive)
}
