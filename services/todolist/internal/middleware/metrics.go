package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики HTTP с префиксом todolist_http_
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "todolist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests to the todolist API by route and status",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "todolist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of todolist API requests",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	inFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "todolist",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served",
		},
	)
)

// MetricsMiddleware собирает метрики для каждого HTTP запроса
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlightRequests.Inc()
		defer inFlightRequests.Dec()

		route := normalizeRoute(r.URL.Path)
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		requestsTotal.WithLabelValues(r.Method, route, status).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// responseWriter обёртка для захвата статус-кода
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Плейсхолдеры для сегментов после префикса /todolist
var routeParams = []string{"{userId}", "{taskId}", "{subtaskId}"}

// normalizeRoute заменяет идентификаторы на плейсхолдеры, чтобы не плодить метки
func normalizeRoute(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	start := -1
	for i, part := range parts {
		if part == "todolist" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return path
	}

	for i := start; i < len(parts); i++ {
		n := i - start
		if n >= len(routeParams) {
			return "/other"
		}
		// .../{taskId}/subtask - литерал, не id
		if n == 2 && parts[i] == "subtask" {
			continue
		}
		parts[i] = routeParams[n]
	}
	return strings.Join(parts, "/")
}

// MetricsHandler возвращает HTTP handler для /metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
