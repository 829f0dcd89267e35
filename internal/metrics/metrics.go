package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_console_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_console_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrental_console_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrental_console_backend_latency_seconds",
		Help:    "Histogram of car rental API call latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status", "route"})

	sessionStoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrental_console_session_store_latency_seconds",
		Help:    "Histogram of session store operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "route"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_console_notifications_total",
		Help: "Notifications shown to users, by kind.",
	}, []string{"kind"})
)

// Middleware records request counts and latencies labelled by chi route pattern.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// chi fills in the full pattern while routing, so read it afterwards.
			label := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			statusCode := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(r.Method, label).Inc()
			httpRequestDuration.WithLabelValues(r.Method, label, statusCode).Observe(time.Since(start).Seconds())
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(r.Method, label, statusCode).Inc()
			}
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBackendLatency records the latency of one car rental API call.
func ObserveBackendLatency(ctx context.Context, operation string, status int, start time.Time) {
	backendLatency.WithLabelValues(operation, statusLabel(status), routeFromContext(ctx)).Observe(time.Since(start).Seconds())
}

// ObserveSessionStoreLatency records session backend latency for a given operation.
func ObserveSessionStoreLatency(ctx context.Context, operation string, start time.Time) {
	sessionStoreLatency.WithLabelValues(operation, routeFromContext(ctx)).Observe(time.Since(start).Seconds())
}

// CountNotification increments the notification counter for kind.
func CountNotification(kind string) {
	notificationsTotal.WithLabelValues(kind).Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func routeFromContext(ctx context.Context) string {
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
