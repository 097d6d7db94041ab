package handler

import (
	"net/http"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// UserHandler is the firm-admin console: onboarding, listing, updating and
// removing members of the active firm.
type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUser handles POST /api/firm-admin/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.service.CreateUserWithRole(ctx, actorID, firmID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// ListUsers handles GET /api/firm-admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	firm, members, err := h.service.ListUsersByFirm(ctx, actorID, firmID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"firm": firm, "users": members})
}

// UpdateUser handles PATCH /api/firm-admin/users/{userId}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "userId")

	var req domain.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.service.UpdateUserByFirm(ctx, actorID, firmID, targetID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// DeleteUser handles DELETE /api/firm-admin/users/{userId}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "userId")

	if err := h.service.DeleteUserByFirm(ctx, actorID, firmID, targetID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
