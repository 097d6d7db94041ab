package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"lexfirm-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrorResponse is the envelope every error reply uses.
type ErrorResponse struct {
	OK    bool         `json:"ok"`
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and human message.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
}

// Error codes for 401 Unauthorized (authentication failures)
const (
	ErrCodeMissingAuthorization = "MISSING_AUTHORIZATION"
	ErrCodeInvalidScheme        = "INVALID_SCHEME"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
)

// Error codes for 403 Forbidden (authorized but insufficient permissions)
const (
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFirmMember = "NOT_FIRM_MEMBER"
)

// Error codes for 404 Not Found
const (
	ErrCodeNotFound = "NOT_FOUND"
)

// Error codes for 400 Bad Request (validation errors)
const (
	ErrCodeMissingFirm      = "MISSING_FIRM"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
)

// Error codes for 409 Conflict
const (
	ErrCodeConflict     = "CONFLICT"
	ErrCodeLimitReached = "LIMIT_REACHED"
)

// Error codes for 429 Too Many Requests
const (
	ErrCodeRateLimited = "RATE_LIMITED"
)

// Error codes for 500 Internal Server Error
const (
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	log := logger.GetLogger(ctx)
	reqID := logger.GetRequestIDFromContext(ctx)

	log.Error(ctx, "request failed",
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
		zap.String("request_id", reqID),
	)

	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// WriteErrorWithFields writes a standardized error response with field-level details.
func WriteErrorWithFields(w http.ResponseWriter, ctx context.Context, status int, code, message string, fields map[string]string) {
	log := logger.GetLogger(ctx)

	fieldPairs := make([]zap.Field, 0, len(fields)+3)
	fieldPairs = append(fieldPairs,
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
	)
	for k, v := range fields {
		fieldPairs = append(fieldPairs, zap.String("field_"+k, v))
	}

	log.Error(ctx, "request failed with field errors", fieldPairs...)

	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// Unauthorized401 writes a 401 Unauthorized response.
func Unauthorized401(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, code, message)
}

// Forbidden403 writes a 403 Forbidden response.
func Forbidden403(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusForbidden, code, message)
}

// NotFound404 writes a 404 Not Found response.
func NotFound404(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest400 writes a 400 Bad Request response.
func BadRequest400(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusBadRequest, code, message)
}

// BadRequest400WithFields writes a 400 Bad Request response with field-level errors.
func BadRequest400WithFields(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusBadRequest, code, message, fields)
}

// Conflict409 writes a 409 Conflict response.
func Conflict409(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusConflict, code, message)
}

// InternalError500 writes a 500 Internal Server Error response. The concrete
// message is logged; the body stays generic outside dev.
func InternalError500(w http.ResponseWriter, ctx context.Context, message string) {
	reqID := logger.GetRequestIDFromContext(ctx)

	log := logger.GetLogger(ctx)
	log.Error(ctx, "internal server error",
		zap.String("message", message),
		zap.String("request_id", reqID),
	)

	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    ErrCodeInternalError,
			Message: "Internal Server Error",
		},
	}

	if os.Getenv("APP_ENV") == "dev" {
		response.Error.ErrorID = reqID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(response)
}

// InternalError writes a 500 with a generic message.
func InternalError(w http.ResponseWriter, ctx context.Context) {
	InternalError500(w, ctx, "internal server error")
}
