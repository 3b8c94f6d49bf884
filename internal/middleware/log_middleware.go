package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs information about each request
func LogMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newStatusResponseWriter(w)
			next.ServeHTTP(rw, r)

			fields := logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rw.status,
				"duration":   time.Since(start).String(),
				"user_agent": r.UserAgent(),
				"ip":         r.RemoteAddr,
				"request_id": RequestIDFromContext(r.Context()),
			}
			if userID, ok := UserIDFromContext(r.Context()); ok {
				fields["user_id"] = userID
			}

			entry := logger.WithFields(fields)
			switch {
			case rw.status >= http.StatusInternalServerError:
				entry.Error("HTTP request")
			case rw.status >= http.StatusBadRequest:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}

// statusResponseWriter is a custom response writer that captures the status code
type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader captures the status code and forwards it to the wrapped ResponseWriter
func (rw *statusResponseWriter) WriteHeader(status int) {
	if rw.wroteHeader {
		return
	}
	rw.status = status
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
