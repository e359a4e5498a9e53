package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"idphoto/internal/asset"
	"idphoto/internal/compose"
	"idphoto/internal/domain"
	"idphoto/internal/history"
	"idphoto/internal/infra"
	"idphoto/internal/pipeline"
	"idphoto/internal/resultcache"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type upload struct {
	field, name string
	data        []byte
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 210, G: 180, B: 160, A: 255})
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestApp(t *testing.T, profile asset.Profile, maxBatch int) (*App, *history.MemoryLog) {
	t.Helper()
	var n atomic.Int64
	hist := history.NewMemoryLog()
	p := pipeline.New(pipeline.Deps{
		Validator: asset.NewValidator(profile),
		Composer:  compose.New(compose.Options{Locale: "en", Now: func() time.Time { return fixedNow }}),
		History:   hist,
		Logger:    zerolog.Nop(),
	}, pipeline.Options{
		MaxBatch: maxBatch,
		Workers:  2,
		NewID:    func() string { return fmt.Sprintf("id-%d", n.Add(1)) },
		Now:      func() time.Time { return fixedNow },
	})
	cfg := &infra.Config{HistoryLimit: 50}
	app := NewApp(cfg, p, hist, resultcache.New(time.Minute), zerolog.Nop())
	app.Now = func() time.Time { return fixedNow }
	return app, hist
}

func routes(app *App) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/options", app.Options)
	r.Post("/v1/photos", app.PhotosCreate)
	r.Get("/v1/photos/{id}/download", app.PhotoDownload)
	r.Post("/v1/batches", app.BatchesCreate)
	r.Get("/v1/batches/{id}/zip", app.BatchZip)
	r.Get("/v1/history", app.HistoryList)
	r.Delete("/v1/history", app.HistoryClear)
	r.Get("/v1/history/export", app.HistoryExport)
	r.Get("/v1/stats", app.Stats)
	return r
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]any
	decodeJSON(t, rr, &payload)
	code, _ := payload["error"].(string)
	return code
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, asset.AdvancedProfile(), 20)
	rr := httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", rr.Code, rr.Body.String())
	}
}

func TestOpenAPIEndpoints(t *testing.T) {
	app, _ := newTestApp(t, asset.AdvancedProfile(), 20)

	rr := httptest.NewRecorder()
	app.OpenAPIJSON(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi.json: %v", err)
	}
	for _, path := range []string{"/v1/photos", "/v1/batches", "/v1/history"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("openapi.json lacks %s", path)
		}
	}

	rr = httptest.NewRecorder()
	app.OpenAPIDocs(rr, httptest.NewRequest(http.MethodGet, "/v1/docs", nil))
	body := rr.Body.String()
	if !strings.Contains(body, `<html lang="en">`) || !strings.Contains(body, "<title>ID Photo API Docs</title>") {
		t.Fatalf("docs page = %s", body)
	}
	if !strings.Contains(body, `spec-url="/v1/openapi.json"`) {
		t.Fatalf("docs page does not point at the document")
	}
}

func TestOptions(t *testing.T) {
	app, _ := newTestApp(t, asset.BasicProfile(), 7)
	rr := serve(routes(app), httptest.NewRequest(http.MethodGet, "/v1/options", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var payload struct {
		PhotoSizes []sizeOption `json:"photo_sizes"`
		Upload     struct {
			Profile  string `json:"profile"`
			MaxBytes int64  `json:"max_bytes"`
			MaxBatch int    `json:"max_batch"`
		} `json:"upload"`
	}
	decodeJSON(t, rr, &payload)
	if len(payload.PhotoSizes) != 5 || payload.PhotoSizes[0].Width != 400 || payload.PhotoSizes[0].Height != 600 {
		t.Fatalf("photo sizes = %+v", payload.PhotoSizes)
	}
	if payload.Upload.Profile != "basic" || payload.Upload.MaxBytes != 5*1024*1024 || payload.Upload.MaxBatch != 7 {
		t.Fatalf("upload = %+v", payload.Upload)
	}
}

func TestPhotosCreateAndDownload(t *testing.T) {
	app, hist := newTestApp(t, asset.AdvancedProfile(), 20)
	h := routes(app)

	req := multipartRequest(t, "/v1/photos", map[string]string{
		"gender": "female", "female_color": "pink", "background": "gradient", "photo_size": "3x4",
	}, upload{"file", "portrait.jpg", jpegBytes(t, 400, 300)})
	rr := serve(h, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
	var view photoView
	decodeJSON(t, rr, &view)
	if view.ID == "" || view.Gender != domain.GenderFemale || view.Width != 300 || view.Height != 400 {
		t.Fatalf("view = %+v", view)
	}
	if view.Options["background"] != "gradient" || view.SourceFilename != "portrait.jpg" {
		t.Fatalf("options = %+v", view.Options)
	}
	if hist.Len() != 1 {
		t.Fatalf("history len = %d", hist.Len())
	}

	for _, tc := range []struct {
		format, contentType, ext string
	}{
		{"", "image/jpeg", ".jpg"},
		{"png", "image/png", ".png"},
	} {
		rr := serve(h, httptest.NewRequest(http.MethodGet, view.DownloadURL+"?format="+tc.format, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("download %q status = %d", tc.format, rr.Code)
		}
		if got := rr.Header().Get("Content-Type"); got != tc.contentType {
			t.Fatalf("content type = %q", got)
		}
		want := "id_photo_pro_female_20261019_093000" + tc.ext
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, want) {
			t.Fatalf("content disposition = %q, want %q", cd, want)
		}
		img, _, err := image.Decode(rr.Body)
		if err != nil {
			t.Fatalf("decode download: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 400 {
			t.Fatalf("downloaded bounds = %v", b)
		}
	}
}

func TestPhotosCreateErrors(t *testing.T) {
	tiny := asset.Profile{Name: "tiny", Extensions: []string{"jpg"}, MaxBytes: 1024}
	tests := []struct {
		name    string
		profile asset.Profile
		fields  map[string]string
		files   []upload
		status  int
		code    string
	}{
		{"missing file", asset.AdvancedProfile(), nil, nil, http.StatusBadRequest, "invalid_asset"},
		{"unsupported", asset.AdvancedProfile(), nil, []upload{{"file", "notes.txt", []byte("hello")}}, http.StatusBadRequest, "invalid_asset"},
		{"corrupt", asset.AdvancedProfile(), nil, []upload{{"file", "broken.jpg", []byte("not really a jpeg")}}, http.StatusBadRequest, "invalid_asset"},
		{"too large", tiny, nil, []upload{{"file", "big.jpg", bytes.Repeat([]byte{0xff}, 4096)}}, http.StatusRequestEntityTooLarge, "file_too_large"},
		{"bad style", asset.AdvancedProfile(), map[string]string{"suit_color": "purple"}, nil, http.StatusBadRequest, "invalid_style"},
		{"bad gender", asset.AdvancedProfile(), map[string]string{"gender": "robot"}, nil, http.StatusBadRequest, "invalid_style"},
		{"bad slider", asset.AdvancedProfile(), map[string]string{"brightness": "lots"}, nil, http.StatusBadRequest, "invalid_style"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, hist := newTestApp(t, tc.profile, 20)
			rr := serve(routes(app), multipartRequest(t, "/v1/photos", tc.fields, tc.files...))
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tc.status, rr.Body.String())
			}
			if code := errorCode(t, rr); code != tc.code {
				t.Fatalf("error = %q, want %q", code, tc.code)
			}
			if hist.Len() != 0 {
				t.Fatalf("failed request recorded history")
			}
		})
	}
}

func TestPhotoDownloadErrors(t *testing.T) {
	app, _ := newTestApp(t, asset.AdvancedProfile(), 20)
	h := routes(app)
	app.Cache.PutPhoto(&domain.GeneratedPhoto{ID: "known", Image: imaging.New(10, 10, color.White)})

	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/photos/unknown/download", nil)); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown photo status = %d", rr.Code)
	}
	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/photos/known/download?format=gif", nil)); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d", rr.Code)
	}
}

func TestBatchesCreateAndZip(t *testing.T) {
	app, hist := newTestApp(t, asset.AdvancedProfile(), 20)
	h := routes(app)

	req := multipartRequest(t, "/v1/batches", map[string]string{"gender": "male", "tie_style": "striped"},
		upload{"files", "alice.photo.jpg", jpegBytes(t, 300, 300)},
		upload{"files", "broken.jpg", []byte("garbage")},
		upload{"files", "bob.jpg", jpegBytes(t, 200, 260)},
	)
	rr := serve(h, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
	var view batchView
	decodeJSON(t, rr, &view)
	if view.Total != 2 || view.Succeeded != 2 || view.Failed != 0 {
		t.Fatalf("counts = %+v", view)
	}
	if len(view.Rejected) != 1 || view.Rejected[0].Filename != "broken.jpg" {
		t.Fatalf("rejected = %+v", view.Rejected)
	}
	if view.Items[0].Filename != "alice.photo.jpg" || view.Items[1].Filename != "bob.jpg" {
		t.Fatalf("items out of order: %+v", view.Items)
	}
	if view.ZipURL == "" || hist.Len() != 2 {
		t.Fatalf("zip url %q history %d", view.ZipURL, hist.Len())
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, view.ZipURL, nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("zip status = %d type %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "batch_id_photos_20261019_093000.zip") {
		t.Fatalf("content disposition = %q", cd)
	}
	zr, err := zip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "001_alice_generated.jpg,002_bob_generated.jpg" {
		t.Fatalf("zip entries = %v", names)
	}
}

func TestBatchesCreateTruncatesToLimit(t *testing.T) {
	app, _ := newTestApp(t, asset.AdvancedProfile(), 2)
	data := jpegBytes(t, 200, 200)
	rr := serve(routes(app), multipartRequest(t, "/v1/batches", nil,
		upload{"files", "a.jpg", data}, upload{"files", "b.jpg", data}, upload{"files", "c.jpg", data}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
	var view batchView
	decodeJSON(t, rr, &view)
	if view.Total != 2 || len(view.Warnings) != 1 {
		t.Fatalf("view = %+v", view)
	}
}

func TestBatchesCreateRejectsEmptyAndInvalid(t *testing.T) {
	app, _ := newTestApp(t, asset.AdvancedProfile(), 20)
	h := routes(app)

	rr := serve(h, multipartRequest(t, "/v1/batches", map[string]string{"gender": "male"}))
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_batch" {
		t.Fatalf("empty batch status = %d", rr.Code)
	}

	rr = serve(h, multipartRequest(t, "/v1/batches", nil, upload{"files", "x.gif", []byte("GIF89a")}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("all invalid status = %d", rr.Code)
	}
	var payload struct {
		Rejected []rejectedView `json:"rejected"`
	}
	decodeJSON(t, rr, &payload)
	if len(payload.Rejected) != 1 {
		t.Fatalf("rejected = %+v", payload.Rejected)
	}

	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/batches/nope/zip", nil)); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown batch status = %d", rr.Code)
	}
}

func seedHistory(t *testing.T, hist *history.MemoryLog) {
	t.Helper()
	ctx := context.Background()
	records := []domain.HistoryRecord{
		{ID: "1", OriginalFilename: "anna.jpg", Gender: domain.GenderFemale, CreatedAt: fixedNow.Add(-48 * time.Hour), FileSize: 2048, ProcessingTime: 1.25},
		{ID: "2", OriginalFilename: "binh.png", Gender: domain.GenderMale, CreatedAt: fixedNow.Add(-time.Hour), FileSize: 1024, ProcessingTime: 0.5},
		{ID: "3", OriginalFilename: "chi.jpg", Gender: domain.GenderFemale, CreatedAt: fixedNow, FileSize: 512, ProcessingTime: 0.75},
	}
	for _, rec := range records {
		if err := hist.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestHistoryList(t *testing.T) {
	app, hist := newTestApp(t, asset.AdvancedProfile(), 20)
	seedHistory(t, hist)
	h := routes(app)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"3", "2", "1"}},
		{"?gender=female", []string{"3", "1"}},
		{"?gender=all&limit=1", []string{"3"}},
		{"?q=BINH", []string{"2"}},
		{"?to=2026-10-17", []string{"1"}},
		{"?from=2026-10-19T08:00:00Z", []string{"3", "2"}},
	}
	for _, tc := range tests {
		rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/history"+tc.query, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%q status = %d", tc.query, rr.Code)
		}
		var payload struct {
			Items []domain.HistoryRecord `json:"items"`
			Count int                    `json:"count"`
		}
		decodeJSON(t, rr, &payload)
		var ids []string
		for _, it := range payload.Items {
			ids = append(ids, it.ID)
		}
		if strings.Join(ids, ",") != strings.Join(tc.want, ",") || payload.Count != len(tc.want) {
			t.Fatalf("%q ids = %v, want %v", tc.query, ids, tc.want)
		}
	}

	for _, bad := range []string{"?limit=0", "?gender=robot", "?from=yesterday"} {
		if rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/history"+bad, nil)); rr.Code != http.StatusBadRequest {
			t.Fatalf("%q status = %d", bad, rr.Code)
		}
	}
}

func TestHistoryExport(t *testing.T) {
	app, hist := newTestApp(t, asset.AdvancedProfile(), 20)
	seedHistory(t, hist)
	h := routes(app)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/history/export", nil))
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv status = %d type %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "Created at,") {
		t.Fatalf("csv = %q", rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "photo_history_20261019_093000.csv") {
		t.Fatalf("content disposition = %q", cd)
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/history/export?format=json&gender=male", nil))
	var records []domain.HistoryRecord
	decodeJSON(t, rr, &records)
	if len(records) != 1 || records[0].ID != "2" {
		t.Fatalf("json records = %+v", records)
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/v1/history/export?format=backup", nil))
	var backup struct {
		TotalRecords int `json:"total_records"`
	}
	decodeJSON(t, rr, &backup)
	if backup.TotalRecords != 3 {
		t.Fatalf("backup total = %d", backup.TotalRecords)
	}

	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/history/export?format=xml", nil)); rr.Code != http.StatusBadRequest {
		t.Fatalf("xml status = %d", rr.Code)
	}
}

func TestHistoryClearAndStats(t *testing.T) {
	app, hist := newTestApp(t, asset.AdvancedProfile(), 20)
	seedHistory(t, hist)
	h := routes(app)

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rr.Code)
	}
	var stats struct {
		Total  int                 `json:"total_photos"`
		Male   int                 `json:"male_photos"`
		Female int                 `json:"female_photos"`
		Daily  []domain.DailyUsage `json:"daily"`
	}
	decodeJSON(t, rr, &stats)
	if stats.Total != 3 || stats.Male != 1 || stats.Female != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	rr = serve(h, httptest.NewRequest(http.MethodDelete, "/v1/history", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rr.Code)
	}
	if hist.Len() != 0 {
		t.Fatalf("history not cleared: %d", hist.Len())
	}
}
