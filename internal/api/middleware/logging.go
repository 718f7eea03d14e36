package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// statusRecorder captures the status code and body size written by the
// downstream handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// RequestLogging emits one line per request. It prefers the request-scoped
// logger injected by CorrelationID so every line carries request_id, and
// falls back to the given logger when none is present. Server errors log at
// error, client errors at warn.
func RequestLogging(fallback zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			logger := zerolog.Ctx(r.Context())
			if logger.GetLevel() == zerolog.Disabled {
				logger = &fallback
			}

			event := logger.Info()
			switch {
			case rec.status >= http.StatusInternalServerError:
				event = logger.Error()
			case rec.status >= http.StatusBadRequest:
				event = logger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Str("user_agent", r.UserAgent()).
				Msg("request")
		})
	}
}
