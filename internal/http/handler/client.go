package handler

import (
	"net/http"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// ClientHandler serves the firm's client roster.
type ClientHandler struct {
	service *service.ClientService
}

func NewClientHandler(service *service.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClient handles POST /api/firm-admin/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	client, err := h.service.CreateClient(ctx, actorID, firmID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// GetClient handles GET /api/firm-admin/clients/{clientId}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	client, err := h.service.GetClient(ctx, actorID, firmID, chi.URLParam(r, "clientId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// ListClients handles GET /api/firm-admin/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	clients, err := h.service.ListClients(ctx, actorID, firmID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

// UpdateClient handles PATCH /api/firm-admin/clients/{clientId}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	client, err := h.service.UpdateClient(ctx, actorID, firmID, chi.URLParam(r, "clientId"), &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/firm-admin/clients/{clientId}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	if err := h.service.DeleteClient(ctx, actorID, firmID, chi.URLParam(r, "clientId")); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
