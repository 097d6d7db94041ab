package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexfirm-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrCaseNotFound indicates the case does not exist in the firm.
	ErrCaseNotFound = errors.New("case not found")

	// ErrCaseNumberConflict indicates the case number is taken within the firm.
	ErrCaseNumberConflict = errors.New("case number already exists in this firm")
)

// CaseUpdate is the repository-level shape of a partial case update. Nil
// pointer fields keep their current value. SetLawyers, when non-nil, replaces
// the assignment set. SetClosedAt distinguishes "clear closed_at" from "leave
// closed_at alone". The whole update runs in one transaction.
type CaseUpdate struct {
	Title       *string
	CaseNumber  *string
	CaseType    *string
	Description *string
	Status      *domain.CaseStatus
	ClientID    *string

	SetClosedAt bool
	ClosedAt    *time.Time

	SetLawyers *[]string

	RemoveDocumentIDs []string
	AddDocuments      []domain.CaseDocument
}

// CaseRepository handles database operations for cases, their lawyer
// assignments and their document rows. Every query is firm-scoped.
type CaseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository creates a new CaseRepository instance.
func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{pool: pool}
}

// Create inserts a case and its lawyer assignments in one transaction. The
// caller has already validated the client and filtered the lawyer ids to the
// firm.
func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create case: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cases (id, title, case_number, case_type, description, status, firm_id, client_id, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		c.ID, c.Title, c.CaseNumber, c.CaseType, c.Description,
		c.Status, c.FirmID, c.ClientID, c.OpenedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCaseNumberConflict
		}
		return fmt.Errorf("insert case: %w", err)
	}

	for _, lawyerID := range c.LawyerIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO case_lawyers (case_id, lawyer_id) VALUES ($1, $2)`,
			c.ID, lawyerID,
		)
		if err != nil {
			return fmt.Errorf("insert case lawyer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create case: %w", err)
	}

	return nil
}

// Get retrieves a case by id within the firm, with its assigned-lawyer set
// and document rows loaded.
func (r *CaseRepository) Get(ctx context.Context, firmID, caseID string) (*domain.Case, error) {
	query := `
		SELECT c.id, c.title, c.case_number, c.case_type, c.description, c.status,
		       c.firm_id, c.client_id, c.opened_at, c.closed_at, c.created_at, c.updated_at,
		       COALESCE(array_agg(cl.lawyer_id) FILTER (WHERE cl.lawyer_id IS NOT NULL), '{}')
		FROM cases c
		LEFT JOIN case_lawyers cl ON cl.case_id = c.id
		WHERE c.id = $1 AND c.firm_id = $2
		GROUP BY c.id
	`

	var c domain.Case
	err := r.pool.QueryRow(ctx, query, caseID, firmID).Scan(
		&c.ID, &c.Title, &c.CaseNumber, &c.CaseType, &c.Description, &c.Status,
		&c.FirmID, &c.ClientID, &c.OpenedAt, &c.ClosedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.LawyerIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("query case: %w", err)
	}

	docs, err := r.listDocuments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Documents = docs

	return &c, nil
}

// List returns all cases of the firm, newest first, with lawyer assignments
// but without document rows.
func (r *CaseRepository) List(ctx context.Context, firmID string) ([]domain.Case, error) {
	return r.list(ctx, `c.firm_id = $1`, firmID)
}

// ListByClient returns the firm's cases opened for one client.
func (r *CaseRepository) ListByClient(ctx context.Context, firmID, clientID string) ([]domain.Case, error) {
	return r.list(ctx, `c.firm_id = $1 AND c.client_id = $2`, firmID, clientID)
}

// ListByLawyer returns the firm's cases a lawyer is assigned to.
func (r *CaseRepository) ListByLawyer(ctx context.Context, firmID, lawyerID string) ([]domain.Case, error) {
	return r.list(ctx, `c.firm_id = $1 AND EXISTS(
		SELECT 1 FROM case_lawyers x WHERE x.case_id = c.id AND x.lawyer_id = $2
	)`, firmID, lawyerID)
}

func (r *CaseRepository) list(ctx context.Context, where string, args ...any) ([]domain.Case, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.title, c.case_number, c.case_type, c.description, c.status,
		       c.firm_id, c.client_id, c.opened_at, c.closed_at, c.created_at, c.updated_at,
		       COALESCE(array_agg(cl.lawyer_id) FILTER (WHERE cl.lawyer_id IS NOT NULL), '{}')
		FROM cases c
		LEFT JOIN case_lawyers cl ON cl.case_id = c.id
		WHERE %s
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		var c domain.Case
		err := rows.Scan(
			&c.ID, &c.Title, &c.CaseNumber, &c.CaseType, &c.Description, &c.Status,
			&c.FirmID, &c.ClientID, &c.OpenedAt, &c.ClosedAt, &c.CreatedAt, &c.UpdatedAt,
			&c.LawyerIDs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}

	return cases, nil
}

// UpdateStatus changes only the status label and closed_at marker.
func (r *CaseRepository) UpdateStatus(ctx context.Context, firmID, caseID string, status domain.CaseStatus, closedAt *time.Time) error {
	query := `
		UPDATE cases
		SET status = $3, closed_at = $4, updated_at = now()
		WHERE id = $1 AND firm_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, caseID, firmID, status, closedAt)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}

	return nil
}

// Update applies every part of a partial update in one transaction: column
// changes, assignment replacement, document removals and additions. It
// returns the storage paths of removed documents so the caller can delete the
// blobs after commit. FirmID is never touched.
func (r *CaseRepository) Update(ctx context.Context, firmID, caseID string, upd *CaseUpdate) (removedPaths []string, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update case: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE cases
		SET title = COALESCE($3, title),
		    case_number = COALESCE($4, case_number),
		    case_type = COALESCE($5, case_type),
		    description = COALESCE($6, description),
		    status = COALESCE($7, status),
		    client_id = COALESCE($8, client_id),
		    closed_at = CASE WHEN $9 THEN $10 ELSE closed_at END,
		    updated_at = now()
		WHERE id = $1 AND firm_id = $2
	`

	tag, err := tx.Exec(ctx, query,
		caseID, firmID,
		upd.Title, upd.CaseNumber, upd.CaseType, upd.Description,
		upd.Status, upd.ClientID, upd.SetClosedAt, upd.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCaseNumberConflict
		}
		return nil, fmt.Errorf("update case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCaseNotFound
	}

	if upd.SetLawyers != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM case_lawyers WHERE case_id = $1`, caseID); err != nil {
			return nil, fmt.Errorf("clear case lawyers: %w", err)
		}
		for _, lawyerID := range *upd.SetLawyers {
			_, err := tx.Exec(ctx,
				`INSERT INTO case_lawyers (case_id, lawyer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				caseID, lawyerID,
			)
			if err != nil {
				return nil, fmt.Errorf("insert case lawyer: %w", err)
			}
		}
	}

	if len(upd.RemoveDocumentIDs) > 0 {
		rows, err := tx.Query(ctx,
			`DELETE FROM case_documents WHERE case_id = $1 AND id = ANY($2) RETURNING file_path`,
			caseID, upd.RemoveDocumentIDs,
		)
		if err != nil {
			return nil, fmt.Errorf("delete case documents: %w", err)
		}
		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan removed document path: %w", err)
			}
			removedPaths = append(removedPaths, path)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate removed documents: %w", err)
		}
	}

	for i := range upd.AddDocuments {
		doc := &upd.AddDocuments[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO case_documents (id, file_name, file_path, file_type, uploaded_by_id, uploaded_by_type, case_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, doc.ID, doc.FileName, doc.FilePath, doc.FileType,
			doc.UploadedByID, doc.UploadedByType, caseID,
		).Scan(&doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert case document: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update case: %w", err)
	}

	return removedPaths, nil
}

// Delete removes a case. Assignment and document rows go with it via the
// schema's cascade; the returned paths let the caller clean up the blobs.
func (r *CaseRepository) Delete(ctx context.Context, firmID, caseID string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin delete case: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT file_path FROM case_documents WHERE case_id = $1`, caseID)
	if err != nil {
		return nil, fmt.Errorf("query case document paths: %w", err)
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document path: %w", err)
		}
		paths = append(paths, path)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document paths: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cases WHERE id = $1 AND firm_id = $2`, caseID, firmID)
	if err != nil {
		return nil, fmt.Errorf("delete case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCaseNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit delete case: %w", err)
	}

	return paths, nil
}

// CountByFirm returns the number of cases in the firm, used to enforce the
// firm's case limit.
func (r *CaseRepository) CountByFirm(ctx context.Context, firmID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases WHERE firm_id = $1`, firmID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count firm cases: %w", err)
	}
	return count, nil
}

func (r *CaseRepository) listDocuments(ctx context.Context, caseID string) ([]domain.CaseDocument, error) {
	query := `
		SELECT id, file_name, file_path, file_type, COALESCE(uploaded_by_id, ''), uploaded_by_type, case_id, created_at
		FROM case_documents
		WHERE case_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query case documents: %w", err)
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
			return nil, fmt.Errorf("scan case document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case documents: %w", err)
	}

	return docs, nil
}
