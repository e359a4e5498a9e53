// Package history stores the generation log in PostgreSQL or in memory.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"idphoto/internal/domain"
	"idphoto/internal/infra"
	"idphoto/internal/sqlinline"
)

// DefaultLimit caps queries that do not set one.
const DefaultLimit = 50

// PGLog is a domain.HistoryLog backed by the photo_history table.
type PGLog struct {
	sql    infra.SQLExecutor
	logger infra.Logger
	now    func() time.Time

	mu    sync.Mutex
	ready bool
}

func NewPGLog(sql infra.SQLExecutor, logger infra.Logger) *PGLog {
	return &PGLog{sql: sql, logger: logger, now: time.Now}
}

// EnsureSchema creates the table on first use. A failed attempt is retried on
// the next call.
func (l *PGLog) EnsureSchema(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return nil
	}
	if _, err := l.sql.Exec(ctx, sqlinline.QEnsurePhotoHistory); err != nil {
		return storageErr("ensure schema", err)
	}
	l.ready = true
	l.logger.Debug().Msg("photo_history schema ready")
	return nil
}

func (l *PGLog) Append(ctx context.Context, rec domain.HistoryRecord) error {
	if err := l.EnsureSchema(ctx); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now()
	}
	_, err := l.sql.Exec(ctx, sqlinline.QInsertPhotoHistory,
		rec.ID,
		rec.UserID,
		rec.OriginalFilename,
		rec.GeneratedFilename,
		string(rec.Gender),
		rec.Options,
		rec.CreatedAt,
		rec.FileSize,
		rec.ProcessingTime,
	)
	if err != nil {
		return storageErr("append", err)
	}
	return nil
}

func (l *PGLog) Query(ctx context.Context, f domain.HistoryFilter) ([]domain.HistoryRecord, error) {
	if err := l.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := l.sql.Query(ctx, sqlinline.QListPhotoHistory,
		limit, optionalTime(f.From), optionalTime(f.To), string(f.Gender), f.FilenameContains)
	if err != nil {
		return nil, storageErr("query", err)
	}
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var gender string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.OriginalFilename, &rec.GeneratedFilename,
			&gender, &rec.Options, &rec.CreatedAt, &rec.FileSize, &rec.ProcessingTime); err != nil {
			return nil, storageErr("scan", err)
		}
		rec.Gender = domain.Gender(gender)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query", err)
	}
	return out, nil
}

func (l *PGLog) Aggregate(ctx context.Context) (domain.HistoryStats, error) {
	stats := domain.HistoryStats{ByGender: map[domain.Gender]int{}}
	if err := l.EnsureSchema(ctx); err != nil {
		return stats, err
	}
	start, end := dayBounds(l.now())
	if err := l.sql.QueryRow(ctx, sqlinline.QPhotoHistorySummary, start, end).
		Scan(&stats.Total, &stats.AverageProcessingTime, &stats.Today); err != nil {
		return stats, storageErr("aggregate", err)
	}

	rows, err := l.sql.Query(ctx, sqlinline.QPhotoHistoryByGender)
	if err != nil {
		return stats, storageErr("aggregate", err)
	}
	defer rows.Close()
	for rows.Next() {
		var gender string
		var n int
		if err := rows.Scan(&gender, &n); err != nil {
			return stats, storageErr("aggregate", err)
		}
		stats.ByGender[domain.Gender(gender)] = n
	}
	if err := rows.Err(); err != nil {
		return stats, storageErr("aggregate", err)
	}
	return stats, nil
}

// Daily returns per-day usage for the last days days, newest first. Days with
// no activity are omitted.
func (l *PGLog) Daily(ctx context.Context, days int) ([]domain.DailyUsage, error) {
	if err := l.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	start, _ := dayBounds(l.now())
	rows, err := l.sql.Query(ctx, sqlinline.QPhotoHistoryDaily, start.AddDate(0, 0, -(days-1)))
	if err != nil {
		return nil, storageErr("daily", err)
	}
	defer rows.Close()

	var out []domain.DailyUsage
	for rows.Next() {
		var d domain.DailyUsage
		if err := rows.Scan(&d.Day, &d.Total, &d.Male, &d.Female, &d.AverageProcessingTime); err != nil {
			return nil, storageErr("daily", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("daily", err)
	}
	return out, nil
}

func (l *PGLog) Clear(ctx context.Context) error {
	if err := l.EnsureSchema(ctx); err != nil {
		return err
	}
	tag, err := l.sql.Exec(ctx, sqlinline.QClearPhotoHistory)
	if err != nil {
		return storageErr("clear", err)
	}
	l.logger.Info().Int64("rows", tag.RowsAffected()).Msg("photo history cleared")
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: history %s: %w", domain.ErrStorageFailure, op, err)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// dayBounds returns local midnight of t's day and of the following day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

var _ domain.HistoryLog = (*PGLog)(nil)
