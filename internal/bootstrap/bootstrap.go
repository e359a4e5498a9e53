// Package bootstrap assembles the services shared by the API server and the
// command line tool.
package bootstrap

import (
	"context"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"idphoto/internal/asset"
	"idphoto/internal/compose"
	"idphoto/internal/domain"
	"idphoto/internal/history"
	"idphoto/internal/infra"
	"idphoto/internal/infra/geoip"
	"idphoto/internal/pipeline"
	"idphoto/internal/resultcache"
	"idphoto/internal/storage"
)

type Services struct {
	Config   *infra.Config
	Pipeline *pipeline.Pipeline
	History  domain.HistoryLog
	Store    *storage.FileStore
	Cache    *resultcache.Cache
	GeoIP    *geoip.Resolver

	pool *pgxpool.Pool
}

// Build wires every service from cfg. Without DATABASE_URL the history lives
// in memory and is lost on exit.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Services, error) {
	profile, err := asset.ProfileByName(cfg.UploadProfile)
	if err != nil {
		return nil, err
	}

	s := &Services{Config: cfg, Cache: resultcache.New(cfg.ResultTTL)}

	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		pg := history.NewPGLog(infra.NewSQLRunner(pool, logger), logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("history schema not ready, retrying on first write")
		}
		s.History = pg
	} else {
		logger.Warn().Msg("DATABASE_URL not set, history is kept in memory")
		s.History = history.NewMemoryLog()
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	if s.Store, err = storage.NewFileStore(storagePath); err != nil {
		s.Close()
		return nil, err
	}

	if s.GeoIP, err = geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		s.GeoIP = nil
	}

	s.Pipeline = pipeline.New(pipeline.Deps{
		Validator: asset.NewValidator(profile),
		Composer:  compose.New(compose.Options{Locale: cfg.DefaultLocale}),
		History:   s.History,
		Store:     s.Store,
		Logger:    logger,
	}, pipeline.Options{
		MaxBatch: cfg.MaxBatchSize,
		Workers:  cfg.BatchWorkers,
	})

	logger.Info().
		Str("upload_profile", profile.Name).
		Str("storage", storagePath).
		Int("max_batch", cfg.MaxBatchSize).
		Int("workers", cfg.BatchWorkers).
		Bool("postgres", s.pool != nil).
		Msg("services ready")
	return s, nil
}

// Close releases the database pool and GeoIP reader.
func (s *Services) Close() {
	if s == nil {
		return
	}
	if s.GeoIP != nil {
		_ = s.GeoIP.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
