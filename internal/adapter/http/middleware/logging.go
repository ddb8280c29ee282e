package middleware

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/balancesheet/internal/domain"
)

// PreparerHeader carries the identity of the person making a change. It is
// set by the gateway in front of the service.
const PreparerHeader = "X-Preparer-ID"

// LoggingMiddleware logs HTTP requests and attaches a request-scoped logger,
// request ID and preparer to the request context.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Wrap wraps an http.Handler with logging.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		logCtx := m.logger.With()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = domain.WithRequestID(ctx, reqID)
			logCtx = logCtx.Str("request_id", reqID)
		}
		if preparer := strings.TrimSpace(r.Header.Get(PreparerHeader)); preparer != "" {
			ctx = domain.WithPreparer(ctx, preparer)
			logCtx = logCtx.Str("preparer", preparer)
		}
		logger := logCtx.Logger()
		ctx = logger.WithContext(ctx)

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		event := logger.Info()
		if wrapped.statusCode >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
