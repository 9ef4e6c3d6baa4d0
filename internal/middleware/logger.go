package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type loggerMiddleware struct {
	log   *slog.Logger
	quiet map[string]bool
}

// NewLoggerMiddleware logs every request except those to quietPaths, which
// still get a request-scoped logger.
func NewLoggerMiddleware(log *slog.Logger, quietPaths ...string) *loggerMiddleware {
	m := &loggerMiddleware{log: log, quiet: make(map[string]bool, len(quietPaths))}
	for _, p := range quietPaths {
		m.quiet[p] = true
	}
	return m
}

// LoggerMiddleware must run after chi's RequestID so request_id is set.
func (m *loggerMiddleware) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := m.log.With(
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := logger.ToContext(r.Context(), reqLog)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		if m.quiet[r.URL.Path] {
			return
		}
		reqLog.Log(ctx, statusLevel(ww.Status()), "request completed",
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
