package handler

import (
	"net/http"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// LawyerHandler serves the firm's lawyer roster.
type LawyerHandler struct {
	service *service.LawyerService
}

func NewLawyerHandler(service *service.LawyerService) *LawyerHandler {
	return &LawyerHandler{service: service}
}

// CreateLawyer handles POST /api/firm-admin/lawyers
func (h *LawyerHandler) CreateLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateLawyerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lawyer, err := h.service.CreateLawyer(ctx, actorID, firmID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, lawyer)
}

// GetLawyer handles GET /api/firm-admin/lawyers/{lawyerId}
func (h *LawyerHandler) GetLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	lawyer, err := h.service.GetLawyer(ctx, actorID, firmID, chi.URLParam(r, "lawyerId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, lawyer)
}

// ListLawyers handles GET /api/firm-admin/lawyers
func (h *LawyerHandler) ListLawyers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	lawyers, err := h.service.ListLawyers(ctx, actorID, firmID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"lawyers": lawyers})
}

// UpdateLawyer handles PATCH /api/firm-admin/lawyers/{lawyerId}
func (h *LawyerHandler) UpdateLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateLawyerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lawyer, err := h.service.UpdateLawyer(ctx, actorID, firmID, chi.URLParam(r, "lawyerId"), &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, lawyer)
}

// DeleteLawyer handles DELETE /api/firm-admin/lawyers/{lawyerId}
func (h *LawyerHandler) DeleteLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	if err := h.service.DeleteLawyer(ctx, actorID, firmID, chi.URLParam(r, "lawyerId")); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
