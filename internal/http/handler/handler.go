package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lexfirm-api/internal/auth"
	"lexfirm-api/internal/http/httperr"
	"lexfirm-api/internal/http/middleware"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// requestIdentity pulls the actor and active firm out of the context. Both are
// guaranteed by the auth and RequireFirm middleware on every /api route; a
// miss here means a wiring bug, reported as 500.
func requestIdentity(w http.ResponseWriter, ctx context.Context) (actorID, firmID string, ok bool) {
	claims, found := auth.GetClaims(ctx)
	if !found {
		httperr.InternalError500(w, ctx, "authentication claims missing from context")
		return "", "", false
	}

	firmID, found = middleware.GetFirmID(ctx)
	if !found {
		httperr.InternalError500(w, ctx, "active firm missing from context")
		return "", "", false
	}

	return claims.UserID, firmID, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeBody decodes and validates a request DTO, writing the 400 itself on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	ctx := r.Context()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body is not valid JSON")
		return false
	}

	if err := dst.Validate(); err != nil {
		writeValidationError(w, ctx, err)
		return false
	}

	return true
}

func writeValidationError(w http.ResponseWriter, ctx context.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on " + fe.Tag()
		}
		httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "validation failed", fields)
		return
	}

	httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
}

// handleServiceError maps service sentinels onto the HTTP contract. Anything
// unmapped is a 500; its cause is recorded as the request's root error so the
// request logger emits it.
func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFirmMember):
		log.Warn(ctx, "caller is not a member of the firm", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeNotFirmMember, "you are not a member of this firm")

	case errors.Is(err, service.ErrUnauthorized):
		log.Warn(ctx, "unauthorized action", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "insufficient permissions for this action")

	case errors.Is(err, service.ErrLawyerProfileRequired):
		log.Warn(ctx, "lawyer profile missing", zap.Error(err))
		httperr.NotFound404(w, ctx, "no lawyer profile linked to this account in the firm")

	case errors.Is(err, service.ErrClientProfileRequired):
		log.Warn(ctx, "client record missing", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "no client record linked to this account in the firm")

	case errors.Is(err, service.ErrFirmNotFound):
		httperr.NotFound404(w, ctx, "firm not found")
	case errors.Is(err, service.ErrUserNotFound):
		httperr.NotFound404(w, ctx, "user not found in this firm")
	case errors.Is(err, service.ErrRoleNotFound):
		httperr.NotFound404(w, ctx, "role not found")
	case errors.Is(err, service.ErrPermissionNotFound):
		httperr.NotFound404(w, ctx, "permission not found")
	case errors.Is(err, service.ErrClientNotFound):
		httperr.NotFound404(w, ctx, "client not found")
	case errors.Is(err, service.ErrLawyerNotFound):
		httperr.NotFound404(w, ctx, "lawyer not found")
	case errors.Is(err, service.ErrCaseNotFound):
		httperr.NotFound404(w, ctx, "case not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		httperr.NotFound404(w, ctx, "document not found")

	case errors.Is(err, service.ErrEmailConflict):
		log.Warn(ctx, "email conflict", zap.Error(err))
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, "a user with this email already exists")
	case errors.Is(err, service.ErrRoleNameConflict):
		log.Warn(ctx, "role name conflict", zap.Error(err))
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, "a role with this name already exists")
	case errors.Is(err, service.ErrCaseNumberConflict):
		log.Warn(ctx, "case number conflict", zap.Error(err))
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, "a case with this number already exists in the firm")
	case errors.Is(err, service.ErrClientInUse):
		log.Warn(ctx, "client still referenced by cases", zap.Error(err))
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, "client has cases and cannot be deleted")

	case errors.Is(err, service.ErrSeatLimitReached):
		httperr.Conflict409(w, ctx, httperr.ErrCodeLimitReached, "firm has reached its user limit")
	case errors.Is(err, service.ErrCaseLimitReached):
		httperr.Conflict409(w, ctx, httperr.ErrCodeLimitReached, "firm has reached its case limit")

	case errors.Is(err, service.ErrClientNotInFirm):
		log.Warn(ctx, "client does not belong to firm", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, "INVALID_CLIENT", "client does not belong to this firm")

	default:
		log.Error(ctx, "unhandled service error", zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError500(w, ctx, "an internal error occurred")
	}
}
