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
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailConflict indicates another user already holds the email.
	ErrEmailConflict = errors.New("user with this email already exists")
)

// UserRepository handles database operations for global user identities.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role_id, must_change_password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &u, nil
}

// CreateWithMembership inserts a new user identity together with its first
// firm membership in one transaction, so a failed membership insert never
// leaves a firm-less identity behind. Email uniqueness is global.
func (r *UserRepository) CreateWithMembership(ctx context.Context, user *domain.User, m *domain.UserFirm) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role_id, must_change_password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash,
		user.RoleID, user.MustChangePassword,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO user_firms (id, user_id, firm_id, role_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, m.ID, m.UserID, m.FirmID, m.RoleID, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMembershipExists
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}

	return nil
}

// EmailExists reports whether any user holds the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}

	return exists, nil
}

// GetDirectRoleName returns the name of the user's direct role, or the empty
// string when the user has none. Only the platform Super Admin carries a
// direct role; everyone else is role-less outside a firm membership.
func (r *UserRepository) GetDirectRoleName(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT COALESCE(r.name, '')
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`

	var name string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("query direct role: %w", err)
	}

	return name, nil
}
