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
	// ErrLawyerNotFound indicates the lawyer does not exist in the firm.
	ErrLawyerNotFound = errors.New("lawyer not found")
)

// LawyerRepository handles database operations for firm lawyer profiles.
type LawyerRepository struct {
	pool *pgxpool.Pool
}

// NewLawyerRepository creates a new LawyerRepository instance.
func NewLawyerRepository(pool *pgxpool.Pool) *LawyerRepository {
	return &LawyerRepository{pool: pool}
}

// Create inserts a lawyer profile into the firm.
func (r *LawyerRepository) Create(ctx context.Context, lawyer *domain.Lawyer) error {
	query := `
		INSERT INTO lawyers (id, name, email, phone, specialization, firm_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		lawyer.ID, lawyer.Name, lawyer.Email, lawyer.Phone,
		lawyer.Specialization, lawyer.FirmID, lawyer.UserID,
	).Scan(&lawyer.CreatedAt, &lawyer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lawyer: %w", err)
	}

	return nil
}

// Get retrieves a lawyer by id within the firm.
func (r *LawyerRepository) Get(ctx context.Context, firmID, lawyerID string) (*domain.Lawyer, error) {
	query := `
		SELECT id, name, email, phone, specialization, firm_id, user_id, created_at, updated_at
		FROM lawyers
		WHERE id = $1 AND firm_id = $2
	`

	var l domain.Lawyer
	err := r.pool.QueryRow(ctx, query, lawyerID, firmID).Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Specialization,
		&l.FirmID, &l.UserID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("query lawyer: %w", err)
	}

	return &l, nil
}

// GetByUser resolves the lawyer profile linked to a login in the firm.
func (r *LawyerRepository) GetByUser(ctx context.Context, firmID, userID string) (*domain.Lawyer, error) {
	query := `
		SELECT id, name, email, phone, specialization, firm_id, user_id, created_at, updated_at
		FROM lawyers
		WHERE user_id = $1 AND firm_id = $2
	`

	var l domain.Lawyer
	err := r.pool.QueryRow(ctx, query, userID, firmID).Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Specialization,
		&l.FirmID, &l.UserID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("query lawyer by user: %w", err)
	}

	return &l, nil
}

// List returns all lawyers of the firm, newest first.
func (r *LawyerRepository) List(ctx context.Context, firmID string) ([]domain.Lawyer, error) {
	query := `
		SELECT id, name, email, phone, specialization, firm_id, user_id, created_at, updated_at
		FROM lawyers
		WHERE firm_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("query lawyers: %w", err)
	}
	defer rows.Close()

	var lawyers []domain.Lawyer
	for rows.Next() {
		var l domain.Lawyer
		err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.Specialization,
			&l.FirmID, &l.UserID, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lawyer: %w", err)
		}
		lawyers = append(lawyers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lawyers: %w", err)
	}

	return lawyers, nil
}

// FilterIDsInFirm returns the subset of ids that resolve to lawyers of the
// firm, preserving no particular order. Ids from other firms simply drop out.
func (r *LawyerRepository) FilterIDsInFirm(ctx context.Context, firmID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id FROM lawyers WHERE firm_id = $1 AND id = ANY($2)`

	rows, err := r.pool.Query(ctx, query, firmID, ids)
	if err != nil {
		return nil, fmt.Errorf("filter lawyer ids: %w", err)
	}
	defer rows.Close()

	var kept []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lawyer id: %w", err)
		}
		kept = append(kept, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lawyer ids: %w", err)
	}

	return kept, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *LawyerRepository) Update(ctx context.Context, firmID, lawyerID string, req *domain.UpdateLawyerRequest) (*domain.Lawyer, error) {
	query := `
		UPDATE lawyers
		SET name = COALESCE($3, name),
		    email = COALESCE($4, email),
		    phone = COALESCE($5, phone),
		    specialization = COALESCE($6, specialization),
		    updated_at = now()
		WHERE id = $1 AND firm_id = $2
		RETURNING id, name, email, phone, specialization, firm_id, user_id, created_at, updated_at
	`

	var l domain.Lawyer
	err := r.pool.QueryRow(ctx, query,
		lawyerID, firmID, req.Name, req.Email, req.Phone, req.Specialization,
	).Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Specialization,
		&l.FirmID, &l.UserID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("update lawyer: %w", err)
	}

	return &l, nil
}

// Delete removes a lawyer profile from the firm. Case assignments referencing
// the lawyer are removed by the schema's cascade.
func (r *LawyerRepository) Delete(ctx context.Context, firmID, lawyerID string) error {
	query := `DELETE FROM lawyers WHERE id = $1 AND firm_id = $2`

	tag, err := r.pool.Exec(ctx, query, lawyerID, firmID)
	if err != nil {
		return fmt.Errorf("delete lawyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLawyerNotFound
	}

	return nil
}
