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
	// ErrFirmNotFound indicates the firm does not exist.
	ErrFirmNotFound = errors.New("firm not found")
)

// FirmRepository handles database operations for tenant firms.
type FirmRepository struct {
	pool *pgxpool.Pool
}

// NewFirmRepository creates a new FirmRepository instance.
func NewFirmRepository(pool *pgxpool.Pool) *FirmRepository {
	return &FirmRepository{pool: pool}
}

// Get retrieves a firm by id.
func (r *FirmRepository) Get(ctx context.Context, firmID string) (*domain.Firm, error) {
	query := `
		SELECT id, name, subdomain, plan, status, max_users, max_cases, created_at, updated_at
		FROM firms
		WHERE id = $1
	`

	var f domain.Firm
	err := r.pool.QueryRow(ctx, query, firmID).Scan(
		&f.ID, &f.Name, &f.Subdomain, &f.Plan, &f.Status,
		&f.MaxUsers, &f.MaxCases, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFirmNotFound
		}
		return nil, fmt.Errorf("query firm: %w", err)
	}

	return &f, nil
}

// GetBySubdomain retrieves a firm by its subdomain label.
func (r *FirmRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Firm, error) {
	query := `
		SELECT id, name, subdomain, plan, status, max_users, max_cases, created_at, updated_at
		FROM firms
		WHERE subdomain = $1
	`

	var f domain.Firm
	err := r.pool.QueryRow(ctx, query, subdomain).Scan(
		&f.ID, &f.Name, &f.Subdomain, &f.Plan, &f.Status,
		&f.MaxUsers, &f.MaxCases, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFirmNotFound
		}
		return nil, fmt.Errorf("query firm by subdomain: %w", err)
	}

	return &f, nil
}
