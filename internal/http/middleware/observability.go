package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"lexfirm-api/internal/http/httperr"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/observability/requestid"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequestIDMiddleware reads or generates the request id and propagates it:
// X-Request-Id from the client if present, a fresh ULID otherwise, injected
// into the context and echoed in the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = requestid.NewRequestID()
		}

		ctx := requestid.SetRequestID(r.Context(), reqID)
		w.Header().Set("X-Request-Id", reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLoggingMiddleware logs one summary line per request at request end,
// with request_id, route, method, status and latency. Bodies and sensitive
// headers never reach the log.
func RequestLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logger.SetLoggerInContext(r.Context(), log)
			ctx = logger.InitRootErrorContext(ctx)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			latency := time.Since(start)

			log.Info(ctx, "http request completed",
				logger.Module("http"),
				logger.Action("request"),
				zap.String("method", r.Method),
				zap.String("route", getRoutePattern(r)),
				zap.String("path", r.URL.Path),
				zap.String("query", sanitizeQuery(r.URL.RawQuery)),
				zap.Int("status", wrapped.statusCode),
				zap.Float64("latency_ms", float64(latency.Milliseconds())),
				zap.String("remote_addr", sanitizeRemoteAddr(r.RemoteAddr)),
				zap.String("user_agent", sanitizeUserAgent(r.UserAgent())),
			)

			// 5xx responses get a second, detailed line with the root cause.
			if wrapped.statusCode >= 500 {
				rootErr := logger.GetRootError(ctx)
				kind := classifyError(rootErr)

				fields := []zap.Field{
					logger.Module("http"),
					logger.Action("http_error"),
					zap.Int("status", wrapped.statusCode),
					zap.String("method", r.Method),
					zap.String("route", getRoutePattern(r)),
					zap.String("path", r.URL.Path),
					zap.String("kind", kind),
				}

				if rootErr != nil {
					fields = append(fields, zap.String("err", rootErr.Error()))

					var pgErr *pgconn.PgError
					if errors.As(rootErr, &pgErr) {
						fields = append(fields, zap.String("pgcode", pgErr.Code))
					}
				} else {
					fields = append(fields, zap.String("err", "internal server error (unspecified cause)"))
				}

				log.Error(ctx, "http_error", fields...)
			}
		})
	}
}

// RecoveryMiddleware recovers from panics, logs the stack trace and returns
// the standard 500 envelope instead of crashing the process.
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := string(debug.Stack())
					ctx := r.Context()
					reqID := logger.GetRequestIDFromContext(ctx)

					recoveredErr := fmt.Errorf("panic: %v", err)
					logger.SetRootError(ctx, recoveredErr)

					log.Error(ctx, "panic_recovered",
						logger.Module("http"),
						logger.Action("panic_recovery"),
						zap.Any("panic", err),
						zap.String("stack", stack),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("route", getRoutePattern(r)),
						zap.String("request_id", reqID),
					)

					httperr.InternalError(w, ctx)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}

// sanitizeQuery truncates long query strings so tokens or bulk filters never
// bloat the log line.
func sanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	const maxLen = 200
	if len(query) > maxLen {
		return query[:maxLen] + "..."
	}
	return query
}

// sanitizeRemoteAddr strips the port: 192.168.1.100:54321 -> 192.168.1.100.
func sanitizeRemoteAddr(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}

func sanitizeUserAgent(ua string) string {
	const maxLen = 100
	if len(ua) > maxLen {
		return ua[:maxLen] + "..."
	}
	return ua
}

// getRoutePattern extracts the chi route pattern from the request context.
func getRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		pattern := rctx.RoutePattern()
		if pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// classifyError buckets the root cause of a 5xx for alerting.
func classifyError(err error) string {
	if err == nil {
		return "unknown"
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "panic") {
		return "panic"
	}
	if strings.Contains(msg, "scan") {
		return "scan"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "db"
	}

	return "unknown"
}
