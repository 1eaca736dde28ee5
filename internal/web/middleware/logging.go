package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request with the status, size and latency.
// Event streams are logged when they close.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"status":   status,
					"bytes":    ww.BytesWritten(),
					"duration": time.Since(start).Round(time.Microsecond),
				})
				if id := chiMiddleware.GetReqID(r.Context()); id != "" {
					entry = entry.WithField("request_id", id)
				}

				switch {
				case status >= http.StatusInternalServerError:
					entry.Error("Request failed")
				case status >= http.StatusBadRequest:
					entry.Warn("Request rejected")
				default:
					entry.Debug("Request served")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
