// Package pipeline runs uploads through validation, composition, storage and
// the history log, one at a time or as a batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"idphoto/internal/asset"
	"idphoto/internal/compose"
	"idphoto/internal/domain"
	"idphoto/internal/export"
	"idphoto/internal/infra"
	"idphoto/internal/prompt"
	"idphoto/internal/storage"
)

// DefaultMaxBatch matches the upload form limit.
const DefaultMaxBatch = 20

// Store persists encoded photos. *storage.FileStore satisfies it.
type Store interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// ProgressFunc is called before each batch item starts. Calls are serialised
// but may arrive out of index order when Workers > 1.
type ProgressFunc func(index, total int, status string)

type Deps struct {
	Validator *asset.Validator
	Composer  *compose.Composer
	History   domain.HistoryLog
	// Store is optional; without it photos live only in memory.
	Store  Store
	Logger infra.Logger
}

type Options struct {
	MaxBatch int
	// Workers bounds concurrent items. 1 processes strictly in order.
	Workers int
	NewID   func() string
	Now     func() time.Time
}

// Request is the configuration shared by every item of a call.
type Request struct {
	Style       domain.StyleOptions
	Enhancement domain.EnhancementOptions
	// Locale overrides the composer caption locale when set.
	Locale string
}

type Pipeline struct {
	validator *asset.Validator
	composer  *compose.Composer
	history   domain.HistoryLog
	store     Store
	logger    infra.Logger

	maxBatch int
	workers  int
	newID    func() string
	now      func() time.Time

	progressMu sync.Mutex
}

func New(deps Deps, opts Options) *Pipeline {
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Validator == nil {
		deps.Validator = asset.NewValidator(asset.AdvancedProfile())
	}
	if deps.Composer == nil {
		deps.Composer = compose.New(compose.Options{Now: opts.Now})
	}
	return &Pipeline{
		validator: deps.Validator,
		composer:  deps.Composer,
		history:   deps.History,
		store:     deps.Store,
		logger:    deps.Logger,
		maxBatch:  opts.MaxBatch,
		workers:   opts.Workers,
		newID:     opts.NewID,
		now:       opts.Now,
	}
}

// MaxBatch returns the configured batch size limit.
func (p *Pipeline) MaxBatch() int { return p.maxBatch }

// Validator returns the asset validator in use.
func (p *Pipeline) Validator() *asset.Validator { return p.validator }

// Generate produces one photo. History and storage failures are logged and do
// not fail the call.
func (p *Pipeline) Generate(ctx context.Context, a *domain.UploadedAsset, req Request) (*domain.GeneratedPhoto, error) {
	if err := req.Style.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := p.process(ctx, 0, a, req, p.composer.Localized(req.Locale))
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Photo, nil
}

// ProcessBatch runs every asset independently and returns one outcome per
// asset in input order. Only an empty, oversize or invalid request fails the
// whole call.
func (p *Pipeline) ProcessBatch(ctx context.Context, assets []domain.UploadedAsset, req Request, onProgress ProgressFunc) (domain.BatchResult, error) {
	switch {
	case len(assets) == 0:
		return domain.BatchResult{}, domain.ErrEmptyBatch
	case len(assets) > p.maxBatch:
		return domain.BatchResult{}, fmt.Errorf("%w: %d files, maximum %d", domain.ErrBatchTooLarge, len(assets), p.maxBatch)
	}
	if err := req.Style.Validate(); err != nil {
		return domain.BatchResult{}, err
	}

	started := p.now()
	result := domain.BatchResult{ID: p.newID(), Outcomes: make([]domain.BatchOutcome, len(assets))}
	composer := p.composer.Localized(req.Locale)
	total := len(assets)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range assets {
		a := &assets[i]
		if err := ctx.Err(); err != nil {
			result.Outcomes[i] = domain.BatchOutcome{Index: i, Filename: a.Filename, Err: err}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Outcomes[i] = domain.BatchOutcome{Index: i, Filename: a.Filename, Err: err}
				return nil
			}
			p.progress(onProgress, i, total, composer.Locale(), a.Filename)
			result.Outcomes[i] = p.process(ctx, i, a, req, composer)
			return nil
		})
	}
	_ = g.Wait()

	result.Elapsed = p.now().Sub(started)
	p.logger.Info().
		Str("batch_id", result.ID).
		Int("total", total).
		Int("succeeded", len(result.Succeeded())).
		Int("failed", len(result.Failed())).
		Dur("elapsed", result.Elapsed).
		Msg("batch processed")
	return result, nil
}

func (p *Pipeline) progress(fn ProgressFunc, index, total int, locale, filename string) {
	if fn == nil {
		return
	}
	status := fmt.Sprintf("Processing %s...", filename)
	if locale == "vi" {
		status = fmt.Sprintf("Đang xử lý %s...", filename)
	}
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	fn(index, total, status)
}

// process turns one asset into an outcome. Panics inside composition are
// reported as ErrCompositionFailure.
func (p *Pipeline) process(ctx context.Context, index int, a *domain.UploadedAsset, req Request, composer *compose.Composer) (out domain.BatchOutcome) {
	out = domain.BatchOutcome{Index: index}
	if a != nil {
		out.Filename = a.Filename
	}
	defer func() {
		if r := recover(); r != nil {
			out.Photo = nil
			out.Err = fmt.Errorf("%w: %v", domain.ErrCompositionFailure, r)
			p.logger.Error().Str("file", out.Filename).Interface("panic", r).Msg("composition panicked")
		}
	}()

	start := p.now()
	v, err := p.validator.Validate(a)
	if err != nil {
		p.logger.Warn().Err(err).Str("file", out.Filename).Msg("asset rejected")
		out.Err = err
		return out
	}

	text := prompt.Build(req.Style)
	img := composer.Compose(v.Image, req.Style.PhotoSize, req.Style, req.Enhancement)
	duration := p.now().Sub(start)

	id := p.newID()
	photo := &domain.GeneratedPhoto{
		ID:                id,
		SourceFilename:    a.Filename,
		GeneratedFilename: id + ".jpg",
		Style:             req.Style,
		Prompt:            text,
		Image:             img,
		Width:             img.Rect.Dx(),
		Height:            img.Rect.Dy(),
		SourceSize:        a.DeclaredSize(),
		Duration:          duration,
		CreatedAt:         p.now(),
		Success:           true,
	}
	out.Photo = photo
	out.StorageErr = p.persist(ctx, photo)
	return out
}

// persist writes the JPEG and the history record. Both are attempted; the
// joined error is logged and returned for the outcome.
func (p *Pipeline) persist(ctx context.Context, photo *domain.GeneratedPhoto) error {
	var errs []error
	if p.store != nil {
		if err := p.storeJPEG(ctx, photo); err != nil {
			errs = append(errs, err)
		}
	}
	if p.history != nil {
		if err := p.history.Append(ctx, domain.RecordFromPhoto(photo)); err != nil {
			if !errors.Is(err, domain.ErrStorageFailure) {
				err = fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
			}
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		p.logger.Error().Err(err).Str("photo_id", photo.ID).Msg("persist generated photo")
	}
	return err
}

func (p *Pipeline) storeJPEG(ctx context.Context, photo *domain.GeneratedPhoto) error {
	data, err := export.JPEG(photo.Image)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
	}
	key, err := p.store.Write(ctx, storage.GeneratedKey(photo.ID, photo.CreatedAt), data)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
	}
	photo.StorageKey = key
	return nil
}
