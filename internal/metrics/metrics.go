// Package metrics объявляет метрики prometheus сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DefaultersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendlens_defaulters_created_total",
		Help: "Number of defaulter records created.",
	})
	DefaultersExposed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendlens_defaulters_exposed_total",
		Help: "Number of records whose countdown reached zero.",
	})
	SweeperObservers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lendlens_sweeper_observers",
		Help: "Number of attached streaming observers.",
	})
	ReportsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendlens_reports_received_total",
		Help: "Number of visitor reports accepted.",
	})
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendlens_login_attempts_total",
		Help: "Admin login attempts by result.",
	}, []string{"result"})
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendlens_notifications_total",
		Help: "Notifications by routing key and result.",
	}, []string{"routing_key", "result"})
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendlens_provider_errors_total",
		Help: "Failed persistence provider calls by operation.",
	}, []string{"operation"})

	httpRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lendlens_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware замеряет длительность запросов по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
