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
	"golang.org/x/crypto/bcrypt"
)

// UserService onboards and manages firm members. Every operation is gated on
// an admin scope in the active firm.
type UserService struct {
	firms       FirmStore
	users       UserStore
	memberships MembershipStore
	roles       RoleStore
	gate        *AccessGate
	log         *logger.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(firms FirmStore, users UserStore, memberships MembershipStore, roles RoleStore, gate *AccessGate, log *logger.Logger) *UserService {
	return &UserService{
		firms:       firms,
		users:       users,
		memberships: memberships,
		roles:       roles,
		gate:        gate,
		log:         log,
	}
}

// CreateUserWithRole creates a user identity (if the email is free) and binds
// it to the firm with the given role. The account starts with an unusable
// random password and must_change_password set, so the invite flow owns the
// first real credential.
func (s *UserService) CreateUserWithRole(ctx context.Context, actorID, firmID string, req *domain.CreateUserRequest) (*domain.FirmMember, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	firm, err := s.firms.Get(ctx, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrFirmNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, fmt.Errorf("get firm: %w", err)
	}

	seats, err := s.memberships.CountByFirm(ctx, firmID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if seats >= firm.MaxUsers {
		return nil, ErrSeatLimitReached
	}

	role, err := s.roles.GetRole(ctx, req.RoleID)
	if err != nil {
		if errors.Is(err, repo.ErrRoleNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	// Early exit only; the unique index inside CreateWithMembership still
	// guards concurrent inserts.
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailConflict
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	user := &domain.User{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       string(passwordHash),
		MustChangePassword: true,
	}
	membership := &domain.UserFirm{
		ID:     uuid.NewString(),
		UserID: user.ID,
		FirmID: firmID,
		RoleID: role.ID,
		Status: domain.MembershipActive,
	}

	if err := s.users.CreateWithMembership(ctx, user, membership); err != nil {
		if errors.Is(err, repo.ErrEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("create user with membership: %w", err)
	}

	perms, err := s.roles.ListRolePermissionNames(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	s.log.Info(ctx, "user onboarded into firm",
		logger.Module("user"),
		logger.Action("create"),
		zap.String("actor_id", actorID),
		zap.String("user_id", user.ID),
		zap.String("role_name", role.Name),
	)

	return &domain.FirmMember{
		User:        *user,
		Role:        *role,
		Permissions: perms,
		Status:      membership.Status,
	}, nil
}

// ListUsersByFirm returns the firm itself and its member roster with each
// member's role and current permission names.
func (s *UserService) ListUsersByFirm(ctx context.Context, actorID, firmID string) (*domain.Firm, []domain.FirmMember, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, firmID); err != nil {
		return nil, nil, err
	}

	firm, err := s.firms.Get(ctx, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrFirmNotFound) {
			return nil, nil, ErrFirmNotFound
		}
		return nil, nil, fmt.Errorf("get firm: %w", err)
	}

	members, err := s.memberships.ListFirmMembers(ctx, firmID)
	if err != nil {
		return nil, nil, fmt.Errorf("list firm members: %w", err)
	}

	// Permission sets are per-role; resolve each role once.
	permsByRole := make(map[string][]string)
	for i := range members {
		roleID := members[i].Role.ID
		perms, ok := permsByRole[roleID]
		if !ok {
			perms, err = s.roles.ListRolePermissionNames(ctx, roleID)
			if err != nil {
				return nil, nil, fmt.Errorf("list role permissions: %w", err)
			}
			permsByRole[roleID] = perms
		}
		members[i].Permissions = perms
	}

	return firm, members, nil
}

// UpdateUserByFirm updates one membership: status, role, and the role's
// permission set. Permission changes mutate the global role and therefore
// reach every firm using it; only this firm's membership row changes
// otherwise.
func (s *UserService) UpdateUserByFirm(ctx context.Context, actorID, firmID, targetUserID string, req *domain.UpdateUserRequest) (*domain.FirmMember, error) {
	if _, err := s.gate.RequireAdmin(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	if req.RoleID != nil {
		if _, err := s.roles.GetRole(ctx, *req.RoleID); err != nil {
			if errors.Is(err, repo.ErrRoleNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, fmt.Errorf("get role: %w", err)
		}
	}

	if req.Status != nil || req.RoleID != nil {
		if err := s.memberships.Update(ctx, targetUserID, firmID, req.Status, req.RoleID); err != nil {
			if errors.Is(err, repo.ErrMembershipNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("update membership: %w", err)
		}
	}

	membership, err := s.memberships.GetMembership(ctx, targetUserID, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrMembershipNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	for _, name := range req.AddPermissions {
		perm, err := s.roles.GetPermissionByName(ctx, name)
		if err != nil {
			if errors.Is(err, repo.ErrPermissionNotFound) {
				return nil, ErrPermissionNotFound
			}
			return nil, fmt.Errorf("get permission: %w", err)
		}
		if err := s.roles.AddRolePermission(ctx, membership.RoleID, perm.ID); err != nil {
			return nil, fmt.Errorf("add role permission: %w", err)
		}
	}

	for _, name := range req.RemovePermissions {
		perm, err := s.roles.GetPermissionByName(ctx, name)
		if err != nil {
			if errors.Is(err, repo.ErrPermissionNotFound) {
				return nil, ErrPermissionNotFound
			}
			return nil, fmt.Errorf("get permission: %w", err)
		}
		if err := s.roles.RemoveRolePermission(ctx, membership.RoleID, perm.ID); err != nil {
			return nil, fmt.Errorf("remove role permission: %w", err)
		}
	}

	user, err := s.users.Get(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	role, err := s.roles.GetRole(ctx, membership.RoleID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	perms, err := s.roles.ListRolePermissionNames(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	s.log.Info(ctx, "firm member updated",
		logger.Module("user"),
		logger.Action("update"),
		zap.String("actor_id", actorID),
		zap.String("user_id", targetUserID),
	)

	return &domain.FirmMember{
		User:        *user,
		Role:        *role,
		Permissions: perms,
		Status:      membership.Status,
	}, nil
}

// DeleteUserByFirm removes the user from the firm. The identity is reclaimed
// only when no memberships remain anywhere; a user shared with another firm
// keeps their account.
func (s *UserService) DeleteUserByFirm(ctx context.Context, actorID, firmID, targetUserID string) error {
	if _, err := s.gate.RequireAdmin(ctx, actorID, firmID); err != nil {
		return err
	}

	userDeleted, err := s.memberships.Remove(ctx, targetUserID, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrMembershipNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("remove membership: %w", err)
	}

	s.log.Info(ctx, "firm member removed",
		logger.Module("user"),
		logger.Action("delete"),
		zap.String("actor_id", actorID),
		zap.String("user_id", targetUserID),
		zap.Bool("identity_deleted", userDeleted),
	)

	return nil
}
