package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/configuration"
)

type statusWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

// WithLogger attaches a request-scoped logrus entry to the context and logs
// every request on completion with method, path, status and duration.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			header := strings.TrimSpace(configuration.Use().RequestIDHeader)
			if header == "" {
				header = "X-Request-ID"
			}
			requestID := strings.TrimSpace(r.Header.Get(header))
			if requestID == "" {
				requestID = uuid.NewString()
				w.Header().Set(header, requestID)
			}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			sw := &statusWriter{ResponseWriter: w}
			r = r.WithContext(composables.WithLogger(r.Context(), entry))
			next.ServeHTTP(sw, r)

			entry.WithFields(logrus.Fields{
				"status":   sw.Status(),
				"duration": time.Since(start).String(),
			}).Info("request completed")
		})
	}
}
