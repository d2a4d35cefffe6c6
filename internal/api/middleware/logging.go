// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	rclog "github.com/ManuGH/roadcam/internal/log"
)

// Logging emits one access-log line per request after the handler completes.
// Health probes and metrics scrapes log at debug so pollers do not drown the
// log; everything else logs at info.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lw, r)

			logger := rclog.WithComponentFromContext(r.Context(), "http")
			ev := logger.Info()
			if infraPath(r.URL.Path) {
				ev = logger.Debug()
			}
			if traceID, spanID := ExtractTraceContext(r); traceID != "" {
				ev = ev.Str("trace_id", traceID).Str("span_id", spanID)
			}
			ev.
				Str(rclog.FieldEvent, "http.request").
				Str("method", r.Method).
				Str(rclog.FieldPath, r.URL.Path).
				Int("status", lw.statusCode).
				Int("bytes", lw.bytesWritten).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

func infraPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/livez", "/metrics":
		return true
	}
	return false
}

// logWriter wraps http.ResponseWriter to capture status and size for the
// access log.
type logWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	written      bool
}

func (lw *logWriter) WriteHeader(statusCode int) {
	if !lw.written {
		lw.statusCode = statusCode
		lw.written = true
	}
	lw.ResponseWriter.WriteHeader(statusCode)
}

func (lw *logWriter) Write(b []byte) (int, error) {
	if !lw.written {
		lw.WriteHeader(http.StatusOK)
	}
	n, err := lw.ResponseWriter.Write(b)
	lw.bytesWritten += n
	return n, err
}
