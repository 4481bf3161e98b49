package middleware

import (
	"log/slog"
	"net/http"

	"github.com/quillback/loglearn/internal/api/shared"
	"github.com/quillback/loglearn/internal/platform/logger"
)

// TraceMiddleware stamps each request with a trace ID and threads a
// trace-tagged logger through the context, so every log line and error
// response produced downstream can be tied back to the same request.
// Install it ahead of any middleware that logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		log := slog.With(slog.String("trace_id", shared.GetTraceID(ctx)))
		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}
