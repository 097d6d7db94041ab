package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// =====================================================
// Role Name Constants (Type Safety)
// =====================================================

// RoleName identifies a role in the global catalog. Role names are the
// dispatch keys for the firm access gate.
type RoleName string

const (
	// RoleSuperAdmin is the platform operator; the only user without a firm.
	RoleSuperAdmin RoleName = "Super Admin"

	// RoleFirmAdmin has full access to everything inside the active firm.
	RoleFirmAdmin RoleName = "Firm Admin"

	// RoleLawyer sees only cases the caller's lawyer profile is assigned to.
	RoleLawyer RoleName = "Lawyer"

	// RoleClient sees only cases owned by the caller's client record.
	RoleClient RoleName = "Client"
)

// String returns the string representation of the role name.
func (r RoleName) String() string {
	return string(r)
}

// IsSystem reports whether the role is one of the built-in roles that are
// never surfaced in a firm's assignable role listing.
func (r RoleName) IsSystem() bool {
	switch r {
	case RoleSuperAdmin, RoleFirmAdmin, RoleLawyer, RoleClient:
		return true
	default:
		return false
	}
}

// SystemRoleNames returns the fixed exclusion list for firm role listings.
func SystemRoleNames() []string {
	return []string{
		RoleSuperAdmin.String(),
		RoleFirmAdmin.String(),
		RoleLawyer.String(),
		RoleClient.String(),
	}
}

// =====================================================
// Catalog Entities
// =====================================================

// Role is a globally defined permission bundle. Roles are created once and
// reused across firms; the only firm-scoped role binding is UserFirm.
type Role struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Permission is an atomic named capability, e.g. "create_case".
type Permission struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MembershipStatus is the state of a user's membership in a firm.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// IsValid checks that the status is one of the defined constants.
func (s MembershipStatus) IsValid() bool {
	return s == MembershipActive || s == MembershipInactive
}

// UserFirm binds a user to a firm with a role and status. A (user, firm) pair
// is unique: a user holds exactly one role per firm at a time.
type UserFirm struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	FirmID    string           `json:"firmId" db:"firm_id"`
	RoleID    string           `json:"roleId" db:"role_id"`
	Status    MembershipStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`
}

// =====================================================
// Request DTOs
// =====================================================

// CreateRoleRequest creates a role in the global catalog. Creating a role
// never binds it to a firm; only onboarding a member does that.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Permissions []string `json:"permissions,omitempty" validate:"omitempty,dive,min=1"`
}

// Validate sanitizes and validates the request.
func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)

	validate := validator.New()
	return validate.Struct(r)
}

// AssignPermissionRequest attaches a permission to a role. The role must
// already be bound to the caller's active firm through a membership row.
type AssignPermissionRequest struct {
	RoleID         string `json:"roleId" validate:"required"`
	PermissionName string `json:"permissionName" validate:"required,min=1,max=100"`
}

// Validate sanitizes and validates the request.
func (r *AssignPermissionRequest) Validate() error {
	r.PermissionName = strings.TrimSpace(r.PermissionName)

	validate := validator.New()
	return validate.Struct(r)
}
