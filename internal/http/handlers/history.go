package handlers

import (
	"net/http"
	"strings"

	"idphoto/internal/domain"
	"idphoto/internal/export"
	"idphoto/internal/middleware"
)

func (a *App) historyLimit() int {
	if a.Config != nil && a.Config.HistoryLimit > 0 {
		return a.Config.HistoryLimit
	}
	return 50
}

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r, a.historyLimit())
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	records, err := a.History.Query(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": records, "count": len(records)})
}

// HistoryExport downloads the filtered history as csv (default), json, or a
// full backup document.
func (a *App) HistoryExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r, a.historyLimit())
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	records, err := a.History.Query(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	now := a.now()
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "csv":
		data, err := export.HistoryCSV(records, middleware.LocaleFromContext(r.Context()))
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.attachment(w, "text/csv; charset=utf-8", export.HistoryFilename("csv", now), data)
	case "json":
		data, err := export.HistoryJSON(records)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.attachment(w, "application/json", export.HistoryFilename("json", now), data)
	case "backup":
		data, err := export.HistoryBackup(records, now)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.attachment(w, "application/json", export.BackupFilename(now), data)
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "format must be csv, json or backup")
	}
}

func (a *App) HistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := a.History.Clear(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.log(r).Info().Msg("history cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the aggregate counters and the last seven days of usage.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.History.Aggregate(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	daily, err := a.History.Daily(r.Context(), 7)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if daily == nil {
		daily = []domain.DailyUsage{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_photos":        stats.Total,
		"male_photos":         stats.Count(domain.GenderMale),
		"female_photos":       stats.Count(domain.GenderFemale),
		"avg_processing_time": stats.AverageProcessingTime,
		"today_photos":        stats.Today,
		"daily":               daily,
		"cached_results":      a.Cache.Len(),
	})
}
