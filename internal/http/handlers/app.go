package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"idphoto/internal/domain"
	"idphoto/internal/infra"
	"idphoto/internal/pipeline"
	"idphoto/internal/resultcache"
)

type App struct {
	Config   *infra.Config
	Pipeline *pipeline.Pipeline
	History  domain.HistoryLog
	Cache    *resultcache.Cache
	Logger   infra.Logger
	Now      func() time.Time
}

func NewApp(cfg *infra.Config, p *pipeline.Pipeline, history domain.HistoryLog, cache *resultcache.Cache, logger infra.Logger) *App {
	return &App{
		Config:   cfg,
		Pipeline: p,
		History:  history,
		Cache:    cache,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// fail maps a domain error onto a status code. Unexpected errors are logged
// and reported without detail.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case domain.IsAssetError(err):
		a.error(w, http.StatusBadRequest, "invalid_asset", err.Error())
	case errors.Is(err, domain.ErrInvalidStyle):
		a.error(w, http.StatusBadRequest, "invalid_style", err.Error())
	case errors.Is(err, domain.ErrEmptyBatch), errors.Is(err, domain.ErrBatchTooLarge):
		a.error(w, http.StatusBadRequest, "invalid_batch", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusServiceUnavailable, "cancelled", "request cancelled")
	case errors.Is(err, domain.ErrCompositionFailure):
		a.log(r).Error().Err(err).Msg("composition failed")
		a.error(w, http.StatusInternalServerError, "composition_failed", "could not compose photo")
	default:
		a.log(r).Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// log prefers the request scoped logger installed by the logging middleware.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
