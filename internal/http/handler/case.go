package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/http/httperr"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps one document upload request.
const maxUploadBytes = 50 << 20 // 50 MiB

// CaseHandler serves the case registry and its documents.
type CaseHandler struct {
	service *service.CaseService
}

func NewCaseHandler(service *service.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// CreateCase handles POST /api/firm-admin/cases
func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateCaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.CreateCase(ctx, actorID, firmID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// GetCase handles GET /api/firm-admin/cases/{caseId}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	c, err := h.service.GetCase(ctx, actorID, firmID, chi.URLParam(r, "caseId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ListCases handles GET /api/firm-admin/cases: each caller gets their own slice of the
// firm's registry.
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	cases, err := h.service.ListCases(ctx, actorID, firmID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": cases})
}

// ListCasesByClient handles GET /api/firm-admin/clients/{clientId}/cases
func (h *CaseHandler) ListCasesByClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	cases, err := h.service.ListCasesByClient(ctx, actorID, firmID, chi.URLParam(r, "clientId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": cases})
}

// ListCasesByLawyer handles GET /api/firm-admin/lawyers/{lawyerId}/cases
func (h *CaseHandler) ListCasesByLawyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	cases, err := h.service.ListCasesByLawyer(ctx, actorID, firmID, chi.URLParam(r, "lawyerId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": cases})
}

// UpdateCaseStatus handles PATCH /api/firm-admin/cases/{caseId}/status
func (h *CaseHandler) UpdateCaseStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateCaseStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.UpdateCaseStatus(ctx, actorID, firmID, chi.URLParam(r, "caseId"), &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UpdateCase handles PATCH /api/firm-admin/cases/{caseId}. Plain JSON carries field
// updates; multipart/form-data carries the same JSON in a "data" part plus
// any number of "files" parts to attach.
func (h *CaseHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateCaseRequest
	var uploads []service.DocumentUpload
	var closeFiles func()

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var parsed bool
		uploads, closeFiles, parsed = h.parseMultipart(w, r, &req)
		if !parsed {
			return
		}
		defer closeFiles()
	} else {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	c, err := h.service.UpdateCase(ctx, actorID, firmID, chi.URLParam(r, "caseId"), &req, uploads)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// DeleteCase handles DELETE /api/firm-admin/cases/{caseId}
func (h *CaseHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	if err := h.service.DeleteCase(ctx, actorID, firmID, chi.URLParam(r, "caseId")); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// UploadDocuments handles POST /api/firm-admin/cases/{caseId}/documents with one or more
// "files" parts.
func (h *CaseHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request must be multipart/form-data within the size limit")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "at least one file is required")
		return
	}

	uploads, closeFiles, err := openUploads(files)
	if err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "could not read uploaded file")
		return
	}
	defer closeFiles()

	docs, err := h.service.AddDocuments(ctx, actorID, firmID, chi.URLParam(r, "caseId"), uploads)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"documents": docs})
}

// ListDocuments handles GET /api/firm-admin/cases/{caseId}/documents
func (h *CaseHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	docs, err := h.service.ListDocuments(ctx, actorID, firmID, chi.URLParam(r, "caseId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// GetDocument handles GET /api/firm-admin/cases/{caseId}/documents/{documentId}
func (h *CaseHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(ctx, actorID, firmID, chi.URLParam(r, "caseId"), chi.URLParam(r, "documentId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// DownloadDocument handles GET /api/firm-admin/cases/{caseId}/documents/{documentId}/download,
// streaming the blob.
func (h *CaseHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	doc, rc, err := h.service.OpenDocument(ctx, actorID, firmID, chi.URLParam(r, "caseId"), chi.URLParam(r, "documentId"))
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}
	defer rc.Close()

	contentType := "application/octet-stream"
	if doc.FileType != nil && *doc.FileType != "" {
		contentType = *doc.FileType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		log.Warn(ctx, "document stream interrupted", logger.Module("case"), logger.Action("download"))
	}
}

// DeleteDocument handles DELETE /api/firm-admin/cases/{caseId}/documents/{documentId}
func (h *CaseHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, firmID, ok := requestIdentity(w, ctx)
	if !ok {
		return
	}

	if err := h.service.DeleteDocument(ctx, actorID, firmID, chi.URLParam(r, "caseId"), chi.URLParam(r, "documentId")); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// parseMultipart extracts the "data" JSON part and any "files" parts of a
// multipart case update. On failure the 400 is already written.
func (h *CaseHandler) parseMultipart(w http.ResponseWriter, r *http.Request, req *domain.UpdateCaseRequest) ([]service.DocumentUpload, func(), bool) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request must be multipart/form-data within the size limit")
		return nil, nil, false
	}

	if data := r.MultipartForm.Value["data"]; len(data) > 0 {
		if err := json.Unmarshal([]byte(data[0]), req); err != nil {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "data part is not valid JSON")
			return nil, nil, false
		}
		if err := req.Validate(); err != nil {
			writeValidationError(w, ctx, err)
			return nil, nil, false
		}
	}

	uploads, closeFiles, err := openUploads(r.MultipartForm.File["files"])
	if err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "could not read uploaded file")
		return nil, nil, false
	}

	return uploads, closeFiles, true
}

// openUploads opens every file header and returns the uploads plus one
// close-all func. On error any already-open file is closed.
func openUploads(files []*multipart.FileHeader) ([]service.DocumentUpload, func(), error) {
	uploads := make([]service.DocumentUpload, 0, len(files))
	open := make([]multipart.File, 0, len(files))

	closeAll := func() {
		for _, f := range open {
			_ = f.Close()
		}
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		open = append(open, f)

		uploads = append(uploads, service.DocumentUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	return uploads, closeAll, nil
}
