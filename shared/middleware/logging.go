package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/logger"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// LoggingMiddleware логирует каждый HTTP запрос глобальным логгером
func LoggingMiddleware(next http.Handler) http.Handler {
	return Logging(logger.Logger)(next)
}

// Logging логирует каждый HTTP запрос в структурированном формате
func Logging(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			logEntry := logger.WithRequestID(log, GetRequestID(r.Context()))
			logEntry.Debugf("request started: %s %s", r.Method, r.URL.Path)

			next.ServeHTTP(wrapped, r)

			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"bytes":       wrapped.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}
			switch {
			case wrapped.statusCode >= 500:
				logEntry.WithFields(fields).Error("request completed")
			case wrapped.statusCode >= 400:
				logEntry.WithFields(fields).Warn("request completed")
			default:
				logEntry.WithFields(fields).Info("request completed")
			}
		})
	}
}
