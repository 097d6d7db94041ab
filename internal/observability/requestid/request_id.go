package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// NewRequestID generates a time-ordered request identifier.
// Format: req_<unix millis>_<10 random bytes hex>. Millisecond prefix keeps
// ids roughly sortable in log aggregators.
func NewRequestID() string {
	timestamp := time.Now().UnixMilli()

	randomBytes := make([]byte, 10)
	if _, err := rand.Read(randomBytes); err != nil {
		// Timestamp-only fallback when the entropy source fails.
		return fmt.Sprintf("req_%d", timestamp)
	}

	return fmt.Sprintf("req_%d_%s", timestamp, hex.EncodeToString(randomBytes))
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// SetRequestID stores the request ID in context.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}
