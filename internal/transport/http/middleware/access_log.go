package middleware

import (
	"net/http"
	"time"

	"github.com/baechuer/wastewise/services/identity-service/internal/logger"
)

// AccessLog writes one line per request. Bodies, cookies and query strings are never logged.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		ev := logger.WithCtx(r.Context()).Info()
		if wrapped.status >= http.StatusInternalServerError {
			ev = logger.WithCtx(r.Context()).Warn()
		}
		ev.Str("method", r.Method).
			Str("route", routePattern(r)).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}
