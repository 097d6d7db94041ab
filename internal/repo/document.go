package repo

import (
	"context"
	"errors"
	"fmt"

	"lexfirm-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDocumentNotFound indicates the document does not exist on the case.
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentRepository handles database operations for case document rows.
// Documents are always addressed through their case, so the case-level access
// decision made by the caller covers them.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository instance.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Add inserts a document row for a case.
func (r *DocumentRepository) Add(ctx context.Context, doc *domain.CaseDocument) error {
	query := `
		INSERT INTO case_documents (id, file_name, file_path, file_type, uploaded_by_id, uploaded_by_type, case_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		doc.ID, doc.FileName, doc.FilePath, doc.FileType,
		doc.UploadedByID, doc.UploadedByType, doc.CaseID,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

// ListByCase returns the document rows of a case, oldest first.
func (r *DocumentRepository) ListByCase(ctx context.Context, caseID string) ([]domain.CaseDocument, error) {
	query := `
		SELECT id, file_name, file_path, file_type, COALESCE(uploaded_by_id, ''), uploaded_by_type, case_id, created_at
		FROM case_documents
		WHERE case_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.CaseDocument
	for rows.Next() {
		var d domain.CaseDocument
		err := rows.Scan(
			&d.ID, &d.FileName, &d.FilePath, &d.FileType,
			&d.UploadedByID, &d.UploadedByType, &d.CaseID, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Get retrieves one document on a case.
func (r *DocumentRepository) Get(ctx context.Context, caseID, documentID string) (*domain.CaseDocument, error) {
	query := `
		SELECT id, file_name, file_path, file_type, COALESCE(uploaded_by_id, ''), uploaded_by_type, case_id, created_at
		FROM case_documents
		WHERE id = $1 AND case_id = $2
	`

	var d domain.CaseDocument
	err := r.pool.QueryRow(ctx, query, documentID, caseID).Scan(
		&d.ID, &d.FileName, &d.FilePath, &d.FileType,
		&d.UploadedByID, &d.UploadedByType, &d.CaseID, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("query document: %w", err)
	}

	return &d, nil
}

// Delete removes a document row and returns its storage path so the caller
// can delete the blob afterwards.
func (r *DocumentRepository) Delete(ctx context.Context, caseID, documentID string) (string, error) {
	query := `
		DELETE FROM case_documents
		WHERE id = $1 AND case_id = $2
		RETURNING file_path
	`

	var path string
	err := r.pool.QueryRow(ctx, query, documentID, caseID).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrDocumentNotFound
		}
		return "", fmt.Errorf("delete document: %w", err)
	}

	return path, nil
}
