package service

import (
	"context"
	"errors"
	"fmt"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/repo"

	"go.uber.org/zap"
)

// AccessGate translates (caller, active firm) into a domain.AccessScope. It
// is shared by every service that guards firm-scoped data: the role is always
// fetched from the database per request, never trusted from the token.
type AccessGate struct {
	users       UserStore
	memberships MembershipStore
	roles       RoleStore
	lawyers     LawyerStore
	clients     ClientStore
	log         *logger.Logger
}

// NewAccessGate creates a new AccessGate instance.
func NewAccessGate(users UserStore, memberships MembershipStore, roles RoleStore, lawyers LawyerStore, clients ClientStore, log *logger.Logger) *AccessGate {
	return &AccessGate{
		users:       users,
		memberships: memberships,
		roles:       roles,
		lawyers:     lawyers,
		clients:     clients,
		log:         log,
	}
}

// Resolve builds the caller's access scope for the firm.
//
// The platform Super Admin carries a direct role on the user row and needs no
// membership; everyone else must hold an active membership in the firm, and
// the membership's role decides the scope. A Lawyer or Client whose account
// is not linked to a profile in the firm cannot have their case slice
// resolved and is rejected outright.
func (g *AccessGate) Resolve(ctx context.Context, userID, firmID string) (domain.AccessScope, error) {
	directRole, err := g.users.GetDirectRoleName(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return domain.AccessScope{}, ErrNotFirmMember
		}
		return domain.AccessScope{}, fmt.Errorf("get direct role: %w", err)
	}
	if directRole == domain.RoleSuperAdmin.String() {
		g.logGranted(ctx, userID, firmID, directRole)
		return domain.AdminScope(), nil
	}

	membership, err := g.memberships.GetMembership(ctx, userID, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrMembershipNotFound) {
			g.log.Warn(ctx, "firm access denied",
				logger.Module("access"),
				logger.Action("authorization"),
				zap.String("actor_id", userID),
				zap.String("firm_id", firmID),
			)
			return domain.AccessScope{}, ErrNotFirmMember
		}
		return domain.AccessScope{}, fmt.Errorf("get membership: %w", err)
	}
	if membership.Status != domain.MembershipActive {
		return domain.AccessScope{}, ErrUnauthorized
	}

	role, err := g.roles.GetRole(ctx, membership.RoleID)
	if err != nil {
		return domain.AccessScope{}, fmt.Errorf("get membership role: %w", err)
	}

	g.logGranted(ctx, userID, firmID, role.Name)

	switch role.Name {
	case domain.RoleFirmAdmin.String():
		return domain.AdminScope(), nil

	case domain.RoleLawyer.String():
		lawyer, err := g.lawyers.GetByUser(ctx, firmID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrLawyerNotFound) {
				return domain.AccessScope{}, ErrLawyerProfileRequired
			}
			return domain.AccessScope{}, fmt.Errorf("get lawyer profile: %w", err)
		}
		return domain.LawyerScope(lawyer.ID), nil

	case domain.RoleClient.String():
		client, err := g.clients.GetByUser(ctx, firmID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrClientNotFound) {
				return domain.AccessScope{}, ErrClientProfileRequired
			}
			return domain.AccessScope{}, fmt.Errorf("get client record: %w", err)
		}
		return domain.ClientScope(client.ID), nil

	default:
		perms, err := g.roles.ListRolePermissionNames(ctx, role.ID)
		if err != nil {
			return domain.AccessScope{}, fmt.Errorf("list role permissions: %w", err)
		}
		return domain.MemberScope(perms), nil
	}
}

// RequireAdmin resolves the scope and rejects non-admin callers.
func (g *AccessGate) RequireAdmin(ctx context.Context, userID, firmID string) (domain.AccessScope, error) {
	scope, err := g.Resolve(ctx, userID, firmID)
	if err != nil {
		return domain.AccessScope{}, err
	}
	if !scope.IsAdmin() {
		return domain.AccessScope{}, ErrUnauthorized
	}
	return scope, nil
}

// RoleName returns the caller's effective role name in the firm, used to
// stamp document uploads. The Super Admin's direct role wins over membership.
func (g *AccessGate) RoleName(ctx context.Context, userID, firmID string) (string, error) {
	directRole, err := g.users.GetDirectRoleName(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get direct role: %w", err)
	}
	if directRole != "" {
		return directRole, nil
	}

	role, err := g.memberships.GetMemberRole(ctx, userID, firmID)
	if err != nil {
		if errors.Is(err, repo.ErrMembershipNotFound) {
			return "", ErrNotFirmMember
		}
		return "", fmt.Errorf("get member role: %w", err)
	}

	return role.Name, nil
}

func (g *AccessGate) logGranted(ctx context.Context, userID, firmID, roleName string) {
	g.log.Info(ctx, "firm access granted",
		logger.Module("access"),
		logger.Action("authorization"),
		zap.String("actor_id", userID),
		zap.String("firm_id", firmID),
		zap.String("role", roleName),
	)
}
