// Package export encodes generated photos and history snapshots for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"idphoto/internal/domain"
	"idphoto/pkg/zip"
)

// JPEGQuality is used for every JPEG the service produces.
const JPEGQuality = 95

const stampLayout = "20060102_150405"

// JPEG encodes img at JPEGQuality.
func JPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PNG encodes img losslessly.
func PNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ZipEntryName names the nth (1-based) archived photo after its source file.
// The base name stops at the first dot.
func ZipEntryName(ordinal int, sourceFilename string) string {
	base := sourceFilename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%03d_%s_generated.jpg", ordinal, base)
}

// BatchZip archives one JPEG per successful outcome. The ordinal is the
// outcome's position in the batch, so failed items leave a gap.
func BatchZip(result domain.BatchResult) ([]byte, error) {
	var assets []zip.Asset
	for _, o := range result.Succeeded() {
		data, err := JPEG(o.Photo.Image)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.Filename, err)
		}
		assets = append(assets, zip.Asset{
			Filename: ZipEntryName(o.Index+1, o.Filename),
			Data:     data,
			Modified: o.Photo.CreatedAt,
		})
	}
	return zip.ArchiveAssets(assets)
}

var csvHeaders = map[string][]string{
	"vi": {"Thời gian tạo", "Tên file gốc", "Giới tính", "Thời gian xử lý", "Kích thước file"},
	"en": {"Created at", "Original file", "Gender", "Processing time", "File size"},
}

// HistoryCSV renders the history table as shown to users: localized headers,
// day-first timestamps, seconds and kilobytes.
func HistoryCSV(records []domain.HistoryRecord, locale string) ([]byte, error) {
	headers, ok := csvHeaders[locale]
	if !ok {
		headers = csvHeaders["en"]
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.CreatedAt.Format("02/01/2006 15:04"),
			r.OriginalFilename,
			r.Gender.Label(locale),
			strconv.FormatFloat(round(r.ProcessingTime, 2), 'f', -1, 64) + "s",
			strconv.FormatFloat(round(float64(r.FileSize)/1024, 1), 'f', 1, 64) + " KB",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryJSON renders the raw records as a JSON array.
func HistoryJSON(records []domain.HistoryRecord) ([]byte, error) {
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return json.Marshal(records)
}

// Backup is the full history snapshot offered from the settings screen.
type Backup struct {
	ExportTime   time.Time              `json:"export_time"`
	TotalRecords int                    `json:"total_records"`
	Data         []domain.HistoryRecord `json:"data"`
}

// HistoryBackup renders an indented Backup document.
func HistoryBackup(records []domain.HistoryRecord, at time.Time) ([]byte, error) {
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return json.MarshalIndent(Backup{ExportTime: at, TotalRecords: len(records), Data: records}, "", "  ")
}

// PhotoFilename is the download name of a single photo, ext without dot.
func PhotoFilename(gender domain.Gender, ext string, at time.Time) string {
	return fmt.Sprintf("id_photo_pro_%s_%s.%s", gender, at.Format(stampLayout), ext)
}

func BatchZipFilename(at time.Time) string {
	return "batch_id_photos_" + at.Format(stampLayout) + ".zip"
}

func HistoryFilename(ext string, at time.Time) string {
	return "photo_history_" + at.Format(stampLayout) + "." + ext
}

func BackupFilename(at time.Time) string {
	return "id_photo_backup_" + at.Format(stampLayout) + ".json"
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
