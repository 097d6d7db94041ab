package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the custom JWT claims for the API. FirmID is the caller's active
// firm; it is empty only for the platform Super Admin, who has no firm of
// their own and selects one per request context.
type Claims struct {
	UserID string `json:"userId"`
	FirmID string `json:"firmId,omitempty"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on custom claims.
func (c *Claims) Validate() error {
	if c.UserID == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
