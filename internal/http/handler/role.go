package handler

import (
	"net/http"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"
)

// RoleHandler serves the global role and permission catalog. Reads and writes
// here are global: a permission added to a role reaches every firm whose
// members hold that role.
type RoleHandler struct {
	service *service.RoleService
}

func NewRoleHandler(service *service.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// ListPermissions handles GET /api/roles/permissions
func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	perms, err := h.service.ListPermissions(ctx)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

// CreateRole handles POST /api/roles
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.CreateRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role, err := h.service.CreateRole(ctx, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

// ListRoles handles GET /api/roles: the active firm's assignable roles with
// their resolved permissions, system roles excluded.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	_, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	roles, err := h.service.ListRolesForFirm(ctx, firmID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

// AssignPermission handles POST /api/roles/assign-permission: grants a permission
// to a role that is bound to the active firm.
func (h *RoleHandler) AssignPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	_, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.AssignPermissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.AssignPermission(ctx, firmID, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
