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
	// ErrMembershipNotFound indicates the user is not a member of the firm.
	ErrMembershipNotFound = errors.New("user is not a member of this firm")

	// ErrMembershipExists indicates the (user, firm) pair is already bound.
	ErrMembershipExists = errors.New("user already belongs to this firm")
)

// MembershipRepository handles the user_firms join: the only place a role
// assignment is firm-scoped.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository instance.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Create inserts a membership row binding a user to a firm with a role.
func (r *MembershipRepository) Create(ctx context.Context, m *domain.UserFirm) error {
	query := `
		INSERT INTO user_firms (id, user_id, firm_id, role_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, m.ID, m.UserID, m.FirmID, m.RoleID, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMembershipExists
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	return nil
}

// GetMembership retrieves the membership row for a (user, firm) pair.
func (r *MembershipRepository) GetMembership(ctx context.Context, userID, firmID string) (*domain.UserFirm, error) {
	query := `
		SELECT id, user_id, firm_id, role_id, status, created_at, updated_at
		FROM user_firms
		WHERE user_id = $1 AND firm_id = $2
	`

	var m domain.UserFirm
	err := r.pool.QueryRow(ctx, query, userID, firmID).Scan(
		&m.ID, &m.UserID, &m.FirmID, &m.RoleID, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("query membership: %w", err)
	}

	return &m, nil
}

// GetMemberRole returns the role a user holds in a firm. This is the primary
// authorization lookup consulted by the access gate on every request.
func (r *MembershipRepository) GetMemberRole(ctx context.Context, userID, firmID string) (*domain.Role, error) {
	query := `
		SELECT r.id, r.name, r.created_at
		FROM user_firms uf
		JOIN roles r ON r.id = uf.role_id
		WHERE uf.user_id = $1 AND uf.firm_id = $2
	`

	var role domain.Role
	err := r.pool.QueryRow(ctx, query, userID, firmID).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("query member role: %w", err)
	}

	return &role, nil
}

// ListFirmMembers returns every member of the firm with the user identity,
// role and membership status. Permission names are resolved separately by the
// caller through the role catalog.
func (r *MembershipRepository) ListFirmMembers(ctx context.Context, firmID string) ([]domain.FirmMember, error) {
	query := `
		SELECT u.id, u.name, u.email, u.must_change_password, u.created_at, u.updated_at,
		       r.id, r.name, r.created_at,
		       uf.status
		FROM user_firms uf
		JOIN users u ON u.id = uf.user_id
		JOIN roles r ON r.id = uf.role_id
		WHERE uf.firm_id = $1
		ORDER BY u.created_at
	`

	rows, err := r.pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("query firm members: %w", err)
	}
	defer rows.Close()

	var members []domain.FirmMember
	for rows.Next() {
		var m domain.FirmMember
		err := rows.Scan(
			&m.User.ID, &m.User.Name, &m.User.Email, &m.User.MustChangePassword,
			&m.User.CreatedAt, &m.User.UpdatedAt,
			&m.Role.ID, &m.Role.Name, &m.Role.CreatedAt,
			&m.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan firm member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firm members: %w", err)
	}

	return members, nil
}

// Update changes the membership's status and/or role for one (user, firm)
// pair. Nil fields are left unchanged. Other firms the user belongs to are
// never touched.
func (r *MembershipRepository) Update(ctx context.Context, userID, firmID string, status *domain.MembershipStatus, roleID *string) error {
	query := `
		UPDATE user_firms
		SET status = COALESCE($3, status),
		    role_id = COALESCE($4, role_id),
		    updated_at = now()
		WHERE user_id = $1 AND firm_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, firmID, status, roleID)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

// Remove deletes the membership row and, when it was the user's last
// membership anywhere, the user row itself. The Super Admin (the only user
// with a direct role) is never deleted. Both steps run in one transaction.
// Returns whether the user row was reclaimed.
func (r *MembershipRepository) Remove(ctx context.Context, userID, firmID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin remove membership: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM user_firms WHERE user_id = $1 AND firm_id = $2`, userID, firmID)
	if err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, ErrMembershipNotFound
	}

	var remaining int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_firms WHERE user_id = $1`, userID).Scan(&remaining)
	if err != nil {
		return false, fmt.Errorf("count remaining memberships: %w", err)
	}

	userDeleted := false
	if remaining == 0 {
		tag, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1 AND role_id IS NULL`, userID)
		if err != nil {
			return false, fmt.Errorf("delete firm-less user: %w", err)
		}
		userDeleted = tag.RowsAffected() > 0
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit remove membership: %w", err)
	}

	return userDeleted, nil
}

// CountByFirm returns the number of membership rows in the firm, used to
// enforce the firm's seat limit.
func (r *MembershipRepository) CountByFirm(ctx context.Context, firmID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_firms WHERE firm_id = $1`, firmID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count firm members: %w", err)
	}
	return count, nil
}
