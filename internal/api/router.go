package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the Chi router with all routes configured.
// metrics serves the Prometheus exposition at /metrics.
func NewRouter(handlers *Handlers, cache Pinger, metrics http.Handler, corsOrigins []string, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/v1/health", HealthHandlerFunc(cache, log))
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Route("/api/v1/weather", func(r chi.Router) {
		r.Get("/", handlers.GetWeather)
		r.Get("/current", handlers.GetCurrent)
		r.Get("/forecast", handlers.GetForecast)
		r.Delete("/cache", handlers.PurgeCache)
	})

	return r
}
