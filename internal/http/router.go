// Package httpapi assembles the public HTTP surface: shared middleware, the
// unauthenticated routes and every feature handler.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rolegate/internal/platform/metrics"
	"rolegate/pkg/platform/httputil"
	"rolegate/pkg/platform/middleware/metadata"
	"rolegate/pkg/platform/middleware/request"
	"rolegate/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	Register(r chi.Router)
}

type Config struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Metrics and Gatherer are optional; without a Gatherer /metrics is not mounted.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires shared middleware, /health, /metrics and the given handlers.
func NewRouter(cfg Config, handlers ...RouteRegistrar) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(recoverer(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", chimw.RequestIDHeader},
		ExposedHeaders: []string{chimw.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

// recoverer turns a handler panic into a 500 envelope and logs it with the
// request ID.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"request_id", request.GetRequestID(r.Context()),
					"panic", rec,
					"path", r.URL.Path,
				)
				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal_error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
