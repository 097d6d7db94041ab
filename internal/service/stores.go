package service

import (
	"context"
	"time"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/repo"
)

// Store interfaces are defined here, on the consumer side, so service tests
// can run against in-memory fakes. The pgx repositories in internal/repo are
// the production implementations.

// FirmStore reads tenant firms.
type FirmStore interface {
	Get(ctx context.Context, firmID string) (*domain.Firm, error)
}

// UserStore manages global user identities.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	CreateWithMembership(ctx context.Context, user *domain.User, m *domain.UserFirm) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetDirectRoleName(ctx context.Context, userID string) (string, error)
}

// MembershipStore manages user-firm bindings. New bindings are created
// together with the identity through UserStore.CreateWithMembership.
type MembershipStore interface {
	GetMembership(ctx context.Context, userID, firmID string) (*domain.UserFirm, error)
	GetMemberRole(ctx context.Context, userID, firmID string) (*domain.Role, error)
	ListFirmMembers(ctx context.Context, firmID string) ([]domain.FirmMember, error)
	Update(ctx context.Context, userID, firmID string, status *domain.MembershipStatus, roleID *string) error
	Remove(ctx context.Context, userID, firmID string) (bool, error)
	CountByFirm(ctx context.Context, firmID string) (int, error)
}

// RoleStore manages the global role and permission catalog.
type RoleStore interface {
	GetRole(ctx context.Context, roleID string) (*domain.Role, error)
	CreateRole(ctx context.Context, role *domain.Role) error
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*domain.Permission, error)
	ListRolePermissionNames(ctx context.Context, roleID string) ([]string, error)
	AddRolePermission(ctx context.Context, roleID, permissionID string) error
	RemoveRolePermission(ctx context.Context, roleID, permissionID string) error
	ListFirmRoles(ctx context.Context, firmID string, excludeNames []string) ([]domain.Role, error)
	RoleBoundToFirm(ctx context.Context, firmID, roleID string) (bool, error)
}

// ClientStore manages firm clients.
type ClientStore interface {
	Create(ctx context.Context, client *domain.Client) error
	Get(ctx context.Context, firmID, clientID string) (*domain.Client, error)
	GetByUser(ctx context.Context, firmID, userID string) (*domain.Client, error)
	List(ctx context.Context, firmID string) ([]domain.Client, error)
	ExistsInFirm(ctx context.Context, firmID, clientID string) (bool, error)
	Update(ctx context.Context, firmID, clientID string, req *domain.UpdateClientRequest) (*domain.Client, error)
	Delete(ctx context.Context, firmID, clientID string) error
}

// LawyerStore manages firm lawyer profiles.
type LawyerStore interface {
	Create(ctx context.Context, lawyer *domain.Lawyer) error
	Get(ctx context.Context, firmID, lawyerID string) (*domain.Lawyer, error)
	GetByUser(ctx context.Context, firmID, userID string) (*domain.Lawyer, error)
	List(ctx context.Context, firmID string) ([]domain.Lawyer, error)
	FilterIDsInFirm(ctx context.Context, firmID string, ids []string) ([]string, error)
	Update(ctx context.Context, firmID, lawyerID string, req *domain.UpdateLawyerRequest) (*domain.Lawyer, error)
	Delete(ctx context.Context, firmID, lawyerID string) error
}

// CaseStore manages cases and their lawyer assignments.
type CaseStore interface {
	Create(ctx context.Context, c *domain.Case) error
	Get(ctx context.Context, firmID, caseID string) (*domain.Case, error)
	List(ctx context.Context, firmID string) ([]domain.Case, error)
	ListByClient(ctx context.Context, firmID, clientID string) ([]domain.Case, error)
	ListByLawyer(ctx context.Context, firmID, lawyerID string) ([]domain.Case, error)
	UpdateStatus(ctx context.Context, firmID, caseID string, status domain.CaseStatus, closedAt *time.Time) error
	Update(ctx context.Context, firmID, caseID string, upd *repo.CaseUpdate) ([]string, error)
	Delete(ctx context.Context, firmID, caseID string) ([]string, error)
	CountByFirm(ctx context.Context, firmID string) (int, error)
}

// DocumentStore manages case document rows.
type DocumentStore interface {
	Add(ctx context.Context, doc *domain.CaseDocument) error
	ListByCase(ctx context.Context, caseID string) ([]domain.CaseDocument, error)
	Get(ctx context.Context, caseID, documentID string) (*domain.CaseDocument, error)
	Delete(ctx context.Context, caseID, documentID string) (string, error)
}
