package domain

import (
	"context"
	"fmt"
	"time"
)

// DefaultUserID is recorded when no caller identity is available.
const DefaultUserID = "default_user"

// HistoryRecord is one row of the generation log.
type HistoryRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	OriginalFilename  string    `json:"original_filename"`
	GeneratedFilename string    `json:"generated_filename"`
	Gender            Gender    `json:"gender"`
	Options           string    `json:"options"`
	CreatedAt         time.Time `json:"created_at"`
	FileSize          int64     `json:"file_size"`
	ProcessingTime    float64   `json:"processing_time"`
}

// HistoryFilter narrows a history query. Zero values disable a filter.
type HistoryFilter struct {
	Limit            int
	From             time.Time
	To               time.Time
	Gender           Gender
	FilenameContains string
}

// HistoryStats aggregates the whole log.
type HistoryStats struct {
	Total                 int            `json:"total_photos"`
	ByGender              map[Gender]int `json:"by_gender"`
	AverageProcessingTime float64        `json:"avg_processing_time"`
	Today                 int            `json:"today_photos"`
}

// Count returns the number of photos for g.
func (s HistoryStats) Count(g Gender) int { return s.ByGender[g] }

// DailyUsage is the per-day rollup used by the statistics view.
type DailyUsage struct {
	Day                   time.Time `json:"day"`
	Total                 int       `json:"total_photos"`
	Male                  int       `json:"male_photos"`
	Female                int       `json:"female_photos"`
	AverageProcessingTime float64   `json:"avg_processing_time"`
}

// HistoryLog is the append-only generation log.
type HistoryLog interface {
	Append(ctx context.Context, rec HistoryRecord) error
	Query(ctx context.Context, filter HistoryFilter) ([]HistoryRecord, error)
	Aggregate(ctx context.Context) (HistoryStats, error)
	Daily(ctx context.Context, days int) ([]DailyUsage, error)
	Clear(ctx context.Context) error
}

// RecordFromPhoto builds the history row for a generated photo.
func RecordFromPhoto(p *GeneratedPhoto) HistoryRecord {
	return HistoryRecord{
		ID:                p.ID,
		UserID:            DefaultUserID,
		OriginalFilename:  p.SourceFilename,
		GeneratedFilename: p.GeneratedFilename,
		Gender:            p.Gender(),
		Options:           p.Style.JSON(),
		CreatedAt:         p.CreatedAt,
		FileSize:          p.SourceSize,
		ProcessingTime:    p.Duration.Seconds(),
	}
}

// ParseDate reads a history filter bound given as YYYY-MM-DD or RFC 3339. An
// empty string is the zero time. With endOfDay a bare date moves to the next
// midnight so that the whole day is included.
func ParseDate(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
