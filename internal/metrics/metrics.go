// Package metrics exposes Prometheus metrics for HTTP traffic and image storage.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	imageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_store_operations_total",
			Help: "Image store operations by kind and result",
		},
		[]string{"op", "result"},
	)
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies keyed by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type instrumentedStore struct {
	next repository.ImageStore
}

// InstrumentImageStore counts uploads and deletes passing through store.
func InstrumentImageStore(store repository.ImageStore) repository.ImageStore {
	return &instrumentedStore{next: store}
}

func (s *instrumentedStore) Upload(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error) {
	stored, err := s.next.Upload(ctx, file)
	observe("upload", err)
	return stored, err
}

func (s *instrumentedStore) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}
	err := s.next.Delete(ctx, storageID)
	observe("delete", err)
	return err
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	imageOperationsTotal.WithLabelValues(op, result).Inc()
}
