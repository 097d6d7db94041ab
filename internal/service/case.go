package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/repo"
	"lexfirm-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentUpload is one incoming file for a case.
type DocumentUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// CaseService is the case registry behind the firm access gate. Every
// operation resolves the caller's scope first; reads outside the caller's
// slice fail, and cross-firm lookups surface as NotFound so one tenant never
// learns another tenant's case ids.
type CaseService struct {
	firms     FirmStore
	cases     CaseStore
	clients   ClientStore
	lawyers   LawyerStore
	documents DocumentStore
	blobs     storage.Store
	gate      *AccessGate
	log       *logger.Logger
}

// NewCaseService creates a new CaseService instance.
func NewCaseService(firms FirmStore, cases CaseStore, clients ClientStore, lawyers LawyerStore, documents DocumentStore, blobs storage.Store, gate *AccessGate, log *logger.Logger) *CaseService {
	return &CaseService{
		firms:     firms,
		cases:     cases,
		clients:   clients,
		lawyers:   lawyers,
		documents: documents,
		blobs:     blobs,
		gate:      gate,
		log:       log,
	}
}

// CreateCase opens a case in the firm. The client must belong to the firm;
// lawyer ids that do not resolve to a lawyer of the firm are silently
// dropped. The firm's case limit is enforced.
func (s *CaseService) CreateCase(ctx context.Context, actorID, firmID string, req *domain.CreateCaseRequest) (*domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() && !scope.HasPermission("create_case") {
		return nil, ErrUnauthorized
	}

	firm, err := s.firms.Get(ctx, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrFirmNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, fmt.Errorf("get firm: %w", err)
	}

	count, err := s.cases.CountByFirm(ctx, firmID)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	if count >= firm.MaxCases {
		return nil, ErrCaseLimitReached
	}

	ok, err := s.clients.ExistsInFirm(ctx, firmID, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return nil, ErrClientNotInFirm
	}

	lawyerIDs, err := s.lawyers.FilterIDsInFirm(ctx, firmID, req.LawyerIDs)
	if err != nil {
		return nil, fmt.Errorf("filter lawyers: %w", err)
	}

	c := &domain.Case{
		ID:          uuid.NewString(),
		Title:       req.Title,
		CaseNumber:  req.CaseNumber,
		CaseType:    req.CaseType,
		Description: req.Description,
		Status:      domain.CaseOpen,
		FirmID:      firmID,
		ClientID:    req.ClientID,
		OpenedAt:    time.Now().UTC(),
		LawyerIDs:   lawyerIDs,
	}

	if err := s.cases.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrCaseNumberConflict) {
			return nil, ErrCaseNumberConflict
		}
		return nil, fmt.Errorf("create case: %w", err)
	}

	s.log.Info(ctx, "case created",
		logger.Module("case"),
		logger.Action("create"),
		zap.String("actor_id", actorID),
		zap.String("case_id", c.ID),
		zap.Int("assigned_lawyers", len(c.LawyerIDs)),
	)

	return c, nil
}

// GetCase retrieves one case with documents, subject to the caller's scope.
// A case in another firm is NotFound; a case in the firm but outside the
// caller's slice is Forbidden.
func (s *CaseService) GetCase(ctx context.Context, actorID, firmID, caseID string) (*domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	if !scope.CanReadCase(c) {
		return nil, ErrUnauthorized
	}

	return c, nil
}

// ListCases returns the caller's case slice: everything for admins, assigned
// cases for lawyers, own cases for clients.
func (s *CaseService) ListCases(ctx context.Context, actorID, firmID string) ([]domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	switch {
	case scope.IsAdmin():
		cases, err := s.cases.List(ctx, firmID)
		if err != nil {
			return nil, fmt.Errorf("list cases: %w", err)
		}
		return cases, nil

	case scope.IsLawyer():
		cases, err := s.cases.ListByLawyer(ctx, firmID, scope.LawyerID())
		if err != nil {
			return nil, fmt.Errorf("list cases by lawyer: %w", err)
		}
		return cases, nil

	case scope.IsClient():
		cases, err := s.cases.ListByClient(ctx, firmID, scope.ClientID())
		if err != nil {
			return nil, fmt.Errorf("list cases by client: %w", err)
		}
		return cases, nil

	default:
		return nil, ErrUnauthorized
	}
}

// ListCasesByClient returns one client's cases: admins for any client, a
// client only for themselves.
func (s *CaseService) ListCasesByClient(ctx context.Context, actorID, firmID, clientID string) ([]domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() && !(scope.IsClient() && scope.ClientID() == clientID) {
		return nil, ErrUnauthorized
	}

	ok, err := s.clients.ExistsInFirm(ctx, firmID, clientID)
	if err != nil {
		return nil, fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return nil, ErrClientNotFound
	}

	cases, err := s.cases.ListByClient(ctx, firmID, clientID)
	if err != nil {
		return nil, fmt.Errorf("list cases by client: %w", err)
	}
	return cases, nil
}

// ListCasesByLawyer returns one lawyer's assigned cases: admins for any
// lawyer, a lawyer only for themselves.
func (s *CaseService) ListCasesByLawyer(ctx context.Context, actorID, firmID, lawyerID string) ([]domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() && !(scope.IsLawyer() && scope.LawyerID() == lawyerID) {
		return nil, ErrUnauthorized
	}

	cases, err := s.cases.ListByLawyer(ctx, firmID, lawyerID)
	if err != nil {
		return nil, fmt.Errorf("list cases by lawyer: %w", err)
	}
	return cases, nil
}

// canWriteCase decides whether the scope may mutate the case itself:
// admins, assigned lawyers, and member roles holding the named permission.
func canWriteCase(scope domain.AccessScope, c *domain.Case, permission string) bool {
	if scope.IsAdmin() {
		return true
	}
	if scope.IsLawyer() && c.IsAssigned(scope.LawyerID()) {
		return true
	}
	return scope.HasPermission(permission)
}

// UpdateCaseStatus changes the status label. closed_at is stamped when the
// status becomes Closed and cleared on any other status; transitions are
// otherwise free-form.
func (s *CaseService) UpdateCaseStatus(ctx context.Context, actorID, firmID, caseID string, req *domain.UpdateCaseStatusRequest) (*domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	if !canWriteCase(scope, c, "update_case") {
		return nil, ErrUnauthorized
	}

	var closedAt *time.Time
	if req.Status == domain.CaseClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	if err := s.cases.UpdateStatus(ctx, firmID, caseID, req.Status, closedAt); err != nil {
		return nil, fmt.Errorf("update case status: %w", err)
	}

	s.log.Info(ctx, "case status changed",
		logger.Module("case"),
		logger.Action("update_status"),
		zap.String("actor_id", actorID),
		zap.String("case_id", caseID),
		zap.String("status", string(req.Status)),
	)

	return s.cases.Get(ctx, firmID, caseID)
}

// UpdateCase applies a partial update in a single transaction: field changes,
// full replacement of the lawyer assignment set, removal of listed documents
// and append of uploaded ones. Blob writes happen before the transaction and
// blob deletes after commit, both best-effort relative to the row state.
func (s *CaseService) UpdateCase(ctx context.Context, actorID, firmID, caseID string, req *domain.UpdateCaseRequest, uploads []DocumentUpload) (*domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	if !canWriteCase(scope, c, "update_case") {
		return nil, ErrUnauthorized
	}

	upd := &repo.CaseUpdate{
		Title:             req.Title,
		CaseNumber:        req.CaseNumber,
		CaseType:          req.CaseType,
		Description:       req.Description,
		Status:            req.Status,
		RemoveDocumentIDs: req.RemoveDocumentIDs,
	}

	if req.ClientID != nil {
		ok, err := s.clients.ExistsInFirm(ctx, firmID, *req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("check client: %w", err)
		}
		if !ok {
			return nil, ErrClientNotInFirm
		}
		upd.ClientID = req.ClientID
	}

	if req.LawyerIDs != nil {
		kept, err := s.lawyers.FilterIDsInFirm(ctx, firmID, *req.LawyerIDs)
		if err != nil {
			return nil, fmt.Errorf("filter lawyers: %w", err)
		}
		if kept == nil {
			kept = []string{}
		}
		upd.SetLawyers = &kept
	}

	if req.Status != nil {
		upd.SetClosedAt = true
		if *req.Status == domain.CaseClosed {
			now := time.Now().UTC()
			upd.ClosedAt = &now
		}
	}

	uploaderRole, err := s.gate.RoleName(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	// Blobs are written before the transaction; if the transaction fails
	// they are removed again, best-effort.
	var uploadedKeys []string
	for _, up := range uploads {
		doc := domain.CaseDocument{
			ID:             uuid.NewString(),
			FileName:       up.FileName,
			FileType:       contentTypePtr(up.ContentType),
			UploadedByID:   actorID,
			UploadedByType: uploaderRole,
			CaseID:         caseID,
		}
		doc.FilePath = documentKey(firmID, caseID, doc.ID, up.FileName)

		if err := s.blobs.Put(ctx, doc.FilePath, up.ContentType, up.Body); err != nil {
			s.removeBlobs(ctx, uploadedKeys)
			return nil, fmt.Errorf("store document blob: %w", err)
		}
		uploadedKeys = append(uploadedKeys, doc.FilePath)
		upd.AddDocuments = append(upd.AddDocuments, doc)
	}

	removedPaths, err := s.cases.Update(ctx, firmID, caseID, upd)
	if err != nil {
		s.removeBlobs(ctx, uploadedKeys)
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		if errors.Is(err, repo.ErrCaseNumberConflict) {
			return nil, ErrCaseNumberConflict
		}
		return nil, fmt.Errorf("update case: %w", err)
	}

	s.removeBlobs(ctx, removedPaths)

	s.log.Info(ctx, "case updated",
		logger.Module("case"),
		logger.Action("update"),
		zap.String("actor_id", actorID),
		zap.String("case_id", caseID),
		zap.Int("documents_added", len(upd.AddDocuments)),
		zap.Int("documents_removed", len(removedPaths)),
	)

	return s.cases.Get(ctx, firmID, caseID)
}

// DeleteCase hard-deletes the case. Document rows go in the same
// transaction; their blobs are removed best-effort after commit.
func (s *CaseService) DeleteCase(ctx context.Context, actorID, firmID, caseID string) error {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() && !scope.HasPermission("delete_case") {
		return ErrUnauthorized
	}

	paths, err := s.cases.Delete(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return ErrCaseNotFound
		}
		return fmt.Errorf("delete case: %w", err)
	}

	s.removeBlobs(ctx, paths)

	s.log.Info(ctx, "case deleted",
		logger.Module("case"),
		logger.Action("delete"),
		zap.String("actor_id", actorID),
		zap.String("case_id", caseID),
		zap.Int("documents_removed", len(paths)),
	)

	return nil
}

// AddDocuments uploads files to a case: admins, assigned lawyers, the owning
// client, and member roles with create_case_document.
func (s *CaseService) AddDocuments(ctx context.Context, actorID, firmID, caseID string, uploads []DocumentUpload) ([]domain.CaseDocument, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	if !scope.CanAddCaseDocuments(c) {
		return nil, ErrUnauthorized
	}

	uploaderRole, err := s.gate.RoleName(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	var docs []domain.CaseDocument
	for _, up := range uploads {
		doc := domain.CaseDocument{
			ID:             uuid.NewString(),
			FileName:       up.FileName,
			FileType:       contentTypePtr(up.ContentType),
			UploadedByID:   actorID,
			UploadedByType: uploaderRole,
			CaseID:         caseID,
		}
		doc.FilePath = documentKey(firmID, caseID, doc.ID, up.FileName)

		if err := s.blobs.Put(ctx, doc.FilePath, up.ContentType, up.Body); err != nil {
			return nil, fmt.Errorf("store document blob: %w", err)
		}

		if err := s.documents.Add(ctx, &doc); err != nil {
			s.removeBlobs(ctx, []string{doc.FilePath})
			return nil, fmt.Errorf("insert document: %w", err)
		}

		docs = append(docs, doc)
	}

	s.log.Info(ctx, "documents uploaded",
		logger.Module("case"),
		logger.Action("add_documents"),
		zap.String("actor_id", actorID),
		zap.String("case_id", caseID),
		zap.Int("count", len(docs)),
	)

	return docs, nil
}

// ListDocuments returns the case's document rows to anyone who may read the
// case, or a member role holding read_case_document.
func (s *CaseService) ListDocuments(ctx context.Context, actorID, firmID, caseID string) ([]domain.CaseDocument, error) {
	c, err := s.authorizeDocumentRead(ctx, actorID, firmID, caseID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GetDocument returns one document row.
func (s *CaseService) GetDocument(ctx context.Context, actorID, firmID, caseID, documentID string) (*domain.CaseDocument, error) {
	c, err := s.authorizeDocumentRead(ctx, actorID, firmID, caseID)
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.Get(ctx, c.ID, documentID)
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// OpenDocument returns the document row and a reader over its blob.
func (s *CaseService) OpenDocument(ctx context.Context, actorID, firmID, caseID, documentID string) (*domain.CaseDocument, io.ReadCloser, error) {
	doc, err := s.GetDocument(ctx, actorID, firmID, caseID, documentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open document blob: %w", err)
	}
	return doc, rc, nil
}

// DeleteDocument removes the row, then the blob best-effort: a failed blob
// delete is logged and never blocks the metadata removal.
func (s *CaseService) DeleteDocument(ctx context.Context, actorID, firmID, caseID, documentID string) error {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return ErrCaseNotFound
		}
		return fmt.Errorf("get case: %w", err)
	}
	if !scope.CanDeleteCaseDocuments(c) {
		return ErrUnauthorized
	}

	path, err := s.documents.Delete(ctx, caseID, documentID)
	if err != nil {
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}

	s.removeBlobs(ctx, []string{path})

	s.log.Info(ctx, "document deleted",
		logger.Module("case"),
		logger.Action("delete_document"),
		zap.String("actor_id", actorID),
		zap.String("case_id", caseID),
		zap.String("document_id", documentID),
	)

	return nil
}

func (s *CaseService) authorizeDocumentRead(ctx context.Context, actorID, firmID, caseID string) (*domain.Case, error) {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.Get(ctx, firmID, caseID)
	if err != nil {
		if errors.Is(err, repo.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	if !scope.CanReadCase(c) && !scope.HasPermission("read_case_document") {
		return nil, ErrUnauthorized
	}

	return c, nil
}

// removeBlobs deletes stored files best-effort; failures are logged and
// swallowed so row state stays authoritative.
func (s *CaseService) removeBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to delete document blob",
				logger.Module("case"),
				logger.Action("blob_cleanup"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

func documentKey(firmID, caseID, docID, fileName string) string {
	return fmt.Sprintf("firms/%s/cases/%s/%s_%s", firmID, caseID, docID, fileName)
}

func contentTypePtr(ct string) *string {
	if ct == "" {
		return nil
	}
	return &ct
}
