package service

import (
	"context"
	"errors"
	"fmt"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleWithPermissions is a role joined with its current permission names.
type RoleWithPermissions struct {
	Role        domain.Role `json:"role"`
	Permissions []string    `json:"permissions"`
}

// RoleService manages the global role catalog, the permission catalog and the
// role-permission graph. Roles and permissions are platform-wide: extending a
// role's permission set is visible to every firm whose members hold the role.
type RoleService struct {
	roles RoleStore
	log   *logger.Logger
}

// NewRoleService creates a new RoleService instance.
func NewRoleService(roles RoleStore, log *logger.Logger) *RoleService {
	return &RoleService{roles: roles, log: log}
}

// ListPermissions returns the fixed permission catalog.
func (s *RoleService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	permissions, err := s.roles.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return permissions, nil
}

// CreateRole adds a role to the global catalog, optionally pre-loading it
// with permissions. Creating a role does not bind it to any firm; only
// onboarding a member with the role does.
func (s *RoleService) CreateRole(ctx context.Context, req *domain.CreateRoleRequest) (*RoleWithPermissions, error) {
	role := &domain.Role{
		ID:   uuid.NewString(),
		Name: req.Name,
	}

	if err := s.roles.CreateRole(ctx, role); err != nil {
		if errors.Is(err, repo.ErrRoleNameConflict) {
			return nil, ErrRoleNameConflict
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	granted := make([]string, 0, len(req.Permissions))
	for _, name := range req.Permissions {
		perm, err := s.roles.GetPermissionByName(ctx, name)
		if err != nil {
			if errors.Is(err, repo.ErrPermissionNotFound) {
				return nil, ErrPermissionNotFound
			}
			return nil, fmt.Errorf("get permission: %w", err)
		}
		if err := s.roles.AddRolePermission(ctx, role.ID, perm.ID); err != nil {
			return nil, fmt.Errorf("add role permission: %w", err)
		}
		granted = append(granted, perm.Name)
	}

	s.log.Info(ctx, "role created",
		logger.Module("role"),
		logger.Action("create"),
		zap.String("role_id", role.ID),
		zap.String("role_name", role.Name),
		zap.Int("permissions", len(granted)),
	)

	return &RoleWithPermissions{Role: *role, Permissions: granted}, nil
}

// AssignPermission attaches a permission to a role on behalf of a firm. The
// role must already be in use by the firm through at least one membership;
// firms cannot reshape roles they do not use. Granting an already-held
// permission succeeds without change.
func (s *RoleService) AssignPermission(ctx context.Context, firmID string, req *domain.AssignPermissionRequest) error {
	bound, err := s.roles.RoleBoundToFirm(ctx, firmID, req.RoleID)
	if err != nil {
		return fmt.Errorf("check role binding: %w", err)
	}
	if !bound {
		return ErrRoleNotFound
	}

	perm, err := s.roles.GetPermissionByName(ctx, req.PermissionName)
	if err != nil {
		if errors.Is(err, repo.ErrPermissionNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("get permission: %w", err)
	}

	if err := s.roles.AddRolePermission(ctx, req.RoleID, perm.ID); err != nil {
		return fmt.Errorf("add role permission: %w", err)
	}

	s.log.Info(ctx, "permission assigned to role",
		logger.Module("role"),
		logger.Action("assign_permission"),
		zap.String("role_id", req.RoleID),
		zap.String("permission", perm.Name),
	)

	return nil
}

// ListRolesForFirm returns the custom roles in use by the firm with their
// permission sets. System roles are filtered out: their behavior is fixed and
// they are not assignable through the role console.
func (s *RoleService) ListRolesForFirm(ctx context.Context, firmID string) ([]RoleWithPermissions, error) {
	roles, err := s.roles.ListFirmRoles(ctx, firmID, domain.SystemRoleNames())
	if err != nil {
		return nil, fmt.Errorf("list firm roles: %w", err)
	}

	result := make([]RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		perms, err := s.roles.ListRolePermissionNames(ctx, role.ID)
		if err != nil {
			return nil, fmt.Errorf("list role permissions: %w", err)
		}
		result = append(result, RoleWithPermissions{Role: role, Permissions: perms})
	}

	return result, nil
}
