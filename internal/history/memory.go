package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"idphoto/internal/domain"
)

// MemoryLog keeps records in process. It serves tests, the CLI and the API
// when no database is configured.
type MemoryLog struct {
	mu      sync.RWMutex
	records []domain.HistoryRecord
	now     func() time.Time
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{now: time.Now}
}

func (m *MemoryLog) Append(ctx context.Context, rec domain.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if rec.UserID == "" {
		rec.UserID = domain.DefaultUserID
	}
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryLog) Query(ctx context.Context, f domain.HistoryFilter) ([]domain.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(f.FilenameContains)

	m.mu.RLock()
	var out []domain.HistoryRecord
	for _, rec := range m.records {
		switch {
		case !f.From.IsZero() && rec.CreatedAt.Before(f.From):
			continue
		case !f.To.IsZero() && !rec.CreatedAt.Before(f.To):
			continue
		case f.Gender != "" && rec.Gender != f.Gender:
			continue
		case needle != "" && !strings.Contains(strings.ToLower(rec.OriginalFilename), needle):
			continue
		}
		out = append(out, rec)
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryLog) Aggregate(ctx context.Context) (domain.HistoryStats, error) {
	stats := domain.HistoryStats{ByGender: map[domain.Gender]int{}}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	start, end := dayBounds(m.now())
	var total float64

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		stats.Total++
		stats.ByGender[rec.Gender]++
		total += rec.ProcessingTime
		if !rec.CreatedAt.Before(start) && rec.CreatedAt.Before(end) {
			stats.Today++
		}
	}
	if stats.Total > 0 {
		stats.AverageProcessingTime = total / float64(stats.Total)
	}
	return stats, nil
}

func (m *MemoryLog) Daily(ctx context.Context, days int) ([]domain.DailyUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	today, _ := dayBounds(m.now())
	since := today.AddDate(0, 0, -(days - 1))

	byDay := map[time.Time]*domain.DailyUsage{}
	sums := map[time.Time]float64{}
	m.mu.RLock()
	for _, rec := range m.records {
		at := rec.CreatedAt.In(today.Location())
		if at.Before(since) {
			continue
		}
		day, _ := dayBounds(at)
		d, ok := byDay[day]
		if !ok {
			d = &domain.DailyUsage{Day: day}
			byDay[day] = d
		}
		d.Total++
		switch rec.Gender {
		case domain.GenderMale:
			d.Male++
		case domain.GenderFemale:
			d.Female++
		}
		sums[day] += rec.ProcessingTime
	}
	m.mu.RUnlock()

	out := make([]domain.DailyUsage, 0, len(byDay))
	for day, d := range byDay {
		d.AverageProcessingTime = sums[day] / float64(d.Total)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

func (m *MemoryLog) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (m *MemoryLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

var _ domain.HistoryLog = (*MemoryLog)(nil)
