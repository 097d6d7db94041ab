package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indicates the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidSignature indicates the HMAC signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrInvalidToken covers every other parse or claim failure.
	ErrInvalidToken = errors.New("invalid token")
)

// HS256Validator validates HS256-signed bearer tokens against a single
// issuer/audience pair.
type HS256Validator struct {
	secret    []byte
	issuer    string
	audience  string
	clockSkew time.Duration
}

// NewHS256Validator creates a validator for the given HMAC secret.
func NewHS256Validator(secret []byte, issuer, audience string, clockSkew time.Duration) *HS256Validator {
	return &HS256Validator{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}
}

// Validate parses and verifies a token string and returns its claims.
func (v *HS256Validator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}
