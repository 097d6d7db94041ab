package middleware

import (
	"context"
	"net/http"

	"lexfirm-api/internal/auth"
	"lexfirm-api/internal/http/httperr"
	"lexfirm-api/internal/observability/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const firmIDKey contextKey = "firm_id"

// RequireFirm resolves the caller's active firm. Regular users carry it in the
// JWT; the platform Super Admin has no firm of their own and selects one per
// request with the X-Firm-Id header. Requests with no resolvable firm are
// rejected before any handler runs.
func RequireFirm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.GetLogger(ctx)

		claims, ok := auth.GetClaims(ctx)
		if !ok {
			log.Error(ctx, "claims not found in context",
				logger.Module("http"), logger.Action("require_firm"))
			httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
			return
		}

		firmID := claims.FirmID
		if firmID == "" {
			firmID = r.Header.Get("X-Firm-Id")
		}
		if firmID == "" {
			log.Warn(ctx, "no active firm for request",
				logger.Module("http"),
				logger.Action("require_firm"),
				zap.String("actor_id", claims.UserID),
			)
			httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingFirm, "no active firm in token or X-Firm-Id header")
			return
		}

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("firm_id", firmID))

		ctx = context.WithValue(ctx, firmIDKey, firmID)
		ctx = logger.SetFirmIDInContext(ctx, firmID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetFirmID retrieves the resolved active firm id from the context.
func GetFirmID(ctx context.Context) (string, bool) {
	firmID, ok := ctx.Value(firmIDKey).(string)
	return firmID, ok
}
