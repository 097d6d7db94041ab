package auth

import (
	"context"
	"net/http"
	"strings"

	"lexfirm-api/internal/observability/logger"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware validates bearer tokens and injects claims into the request
// context. Downstream middleware resolves the active firm from the claims.
func Middleware(validator *HS256Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(r.Context(), "missing authorization header",
					logger.Module("auth"), logger.Action("authenticate"))
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn(r.Context(), "invalid authorization header format",
					logger.Module("auth"), logger.Action("authenticate"))
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				log.Warn(r.Context(), "token validation failed",
					logger.Module("auth"), logger.Action("authenticate"),
					zap.Error(err),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			ctx = logger.SetUserIDInContext(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves claims from context.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// WithClaims injects claims into a context; test helper for handler and
// middleware tests that bypass the full token path.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
