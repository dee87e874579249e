package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RouterConfig holds the inbound HTTP settings.
type RouterConfig struct {
	// APIToken enables bearer auth on /api/v1 (health excluded) when non-empty.
	APIToken           string
	RateLimitPerMinute int
	CookieSecure       bool
}

// NewRouter builds the chi router with the page routes, the JSON API and health.
func NewRouter(handlers *Handlers, backend Pinger, cfg RouterConfig, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	r.Get("/api/v1/health", HealthHandlerFunc(backend, log))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS())))

	r.Group(func(r chi.Router) {
		r.Use(ClientID(cfg.CookieSecure))

		r.Get("/", handlers.SearchPage)
		r.Post("/search", handlers.Search)
		r.Get("/weather", handlers.ResultsPage)
		r.Post("/history/clear", handlers.ClearHistoryPage)

		r.Group(func(r chi.Router) {
			if cfg.APIToken != "" {
				r.Use(BearerAuth(cfg.APIToken))
			}
			r.Get("/api/v1/weather", handlers.GetWeather)
			r.Get("/api/v1/history", handlers.GetHistory)
			r.Delete("/api/v1/history", handlers.DeleteHistory)
		})
	})

	return r
}
