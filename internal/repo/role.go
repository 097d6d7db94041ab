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
	// ErrRoleNotFound indicates the role does not exist in the global catalog.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleNameConflict indicates a role with the same name already exists.
	ErrRoleNameConflict = errors.New("role with this name already exists")

	// ErrPermissionNotFound indicates the permission name is not in the catalog.
	ErrPermissionNotFound = errors.New("permission not found")
)

// RoleRepository handles the global role and permission catalog and the
// role-permission join. The join is deliberately global: a permission granted
// to a role is visible to every firm whose members hold that role.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository instance.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetRole retrieves a role by id.
func (r *RoleRepository) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	query := `SELECT id, name, created_at FROM roles WHERE id = $1`

	var role domain.Role
	err := r.pool.QueryRow(ctx, query, roleID).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("query role: %w", err)
	}

	return &role, nil
}

// CreateRole inserts a role into the global catalog.
func (r *RoleRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, role.ID, role.Name).Scan(&role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoleNameConflict
		}
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

// ListPermissions returns the global permission catalog.
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	query := `SELECT id, name, created_at FROM permissions ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

// GetPermissionByName retrieves a permission by its name key.
func (r *RoleRepository) GetPermissionByName(ctx context.Context, name string) (*domain.Permission, error) {
	query := `SELECT id, name, created_at FROM permissions WHERE name = $1`

	var p domain.Permission
	err := r.pool.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("query permission: %w", err)
	}

	return &p, nil
}

// ListRolePermissionNames returns the role's permission names as a flat set
// union; there is no inheritance, wildcarding or negation.
func (r *RoleRepository) ListRolePermissionNames(ctx context.Context, roleID string) ([]string, error) {
	query := `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`

	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan permission name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return names, nil
}

// AddRolePermission attaches a permission to a role. Re-adding an existing
// pair is a no-op, not an error.
func (r *RoleRepository) AddRolePermission(ctx context.Context, roleID, permissionID string) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("insert role permission: %w", err)
	}

	return nil
}

// RemoveRolePermission detaches a permission from a role. Removing an absent
// pair is a no-op.
func (r *RoleRepository) RemoveRolePermission(ctx context.Context, roleID, permissionID string) error {
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := r.pool.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("delete role permission: %w", err)
	}

	return nil
}

// ListFirmRoles returns the distinct roles currently bound to the firm
// through user_firms rows, excluding the given role names. A role bound by
// several memberships appears once.
func (r *RoleRepository) ListFirmRoles(ctx context.Context, firmID string, excludeNames []string) ([]domain.Role, error) {
	query := `
		SELECT DISTINCT r.id, r.name, r.created_at
		FROM roles r
		JOIN user_firms uf ON uf.role_id = r.id
		WHERE uf.firm_id = $1
		  AND NOT (r.name = ANY($2))
		ORDER BY r.name
	`

	rows, err := r.pool.Query(ctx, query, firmID, excludeNames)
	if err != nil {
		return nil, fmt.Errorf("query firm roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan firm role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firm roles: %w", err)
	}

	return roles, nil
}

// RoleBoundToFirm reports whether any membership row binds the role to the
// firm. A firm may only extend permissions for roles it actually uses.
func (r *RoleRepository) RoleBoundToFirm(ctx context.Context, firmID, roleID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_firms WHERE firm_id = $1 AND role_id = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, firmID, roleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check role firm binding: %w", err)
	}

	return exists, nil
}
