package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vocab-srs/vocab-api/internal/api/shared"
)

// TraceMiddleware stamps every request context with a fresh trace ID so
// handler logs and error bodies for the same request can be correlated.
// Apply it before any handler that writes error responses.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.Debug("request started",
			slog.String("trace_id", shared.GetTraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
