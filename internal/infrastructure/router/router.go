package router

import (
	"net/http"
	"time"

	"invoice-reconciliation-service/internal/interface/handler"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter mounts the reconciliation endpoints, health and metrics
func NewHTTPRouter(h *handler.ReconciliationHandler, gatherer prometheus.Gatherer, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/reconciliation", func(r chi.Router) {
		r.Get("/", h.Query)
		r.Post("/populate", h.Populate)
		r.Get("/summary", h.Summary)
		r.Get("/export", h.Export)
		r.Post("/differences", h.ComputeDifferences)
		r.Get("/runs", h.Runs)
	})

	return r
}

// requestLogger logs method, path, status and duration of every request.
// 5xx responses log at error level, 4xx at warn.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"durationMs", time.Since(start).Milliseconds(),
				"requestID", middleware.GetReqID(r.Context()),
			}
			switch {
			case ww.Status() >= 500:
				log.Error("HTTP request", fields...)
			case ww.Status() >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Debug("HTTP request", fields...)
			}
		})
	}
}
