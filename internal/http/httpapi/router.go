package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"idphoto/internal/http/handlers"
	"idphoto/internal/infra"
	"idphoto/internal/middleware"
)

// Options carries the middleware settings that are not part of the handlers.
type Options struct {
	DefaultLocale   string
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Get("/v1/options", app.Options)

		r.Route("/v1/photos", func(r chi.Router) {
			r.Post("/", app.PhotosCreate)
			r.Get("/{id}/download", app.PhotoDownload)
		})

		r.Route("/v1/batches", func(r chi.Router) {
			r.Post("/", app.BatchesCreate)
			r.Get("/{id}/zip", app.BatchZip)
		})

		r.Route("/v1/history", func(r chi.Router) {
			r.Get("/", app.HistoryList)
			r.Delete("/", app.HistoryClear)
			r.Get("/export", app.HistoryExport)
		})

		r.Get("/v1/stats", app.Stats)
	})

	return r
}
