package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// User is a global identity. Email is unique across all firms. RoleID is set
// only for the platform Super Admin; every other user's effective role is
// firm-specific and carried by UserFirm.
type User struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Email              string    `json:"email" db:"email"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	RoleID             *string   `json:"roleId,omitempty" db:"role_id"`
	MustChangePassword bool      `json:"mustChangePassword" db:"must_change_password"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// FirmMember is the admin-console view of one firm membership: the user plus
// the role, its current permission names and the membership status.
type FirmMember struct {
	User        User             `json:"user"`
	Role        Role             `json:"role"`
	Permissions []string         `json:"permissions"`
	Status      MembershipStatus `json:"status"`
}

// CreateUserRequest onboards a user into the active firm with a role.
type CreateUserRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Email  string `json:"email" validate:"required,email,max=255"`
	RoleID string `json:"roleId" validate:"required"`
}

// Validate sanitizes and validates the request.
func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateUserRequest updates one firm membership. Any subset of fields may be
// supplied; nil means "leave unchanged". AddPermissions/RemovePermissions
// mutate the role's global permission set, which affects every firm that uses
// the same role.
type UpdateUserRequest struct {
	Status            *MembershipStatus `json:"status,omitempty"`
	RoleID            *string           `json:"roleId,omitempty"`
	AddPermissions    []string          `json:"addPermissions,omitempty" validate:"omitempty,dive,min=1"`
	RemovePermissions []string          `json:"removePermissions,omitempty" validate:"omitempty,dive,min=1"`
}

// Validate validates the request.
func (r *UpdateUserRequest) Validate() error {
	if r.Status != nil && !r.Status.IsValid() {
		return &InvalidFieldError{Field: "status", Reason: "must be active or inactive"}
	}

	validate := validator.New()
	return validate.Struct(r)
}

// InvalidFieldError reports a request field that failed domain validation
// beyond what struct tags can express.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return e.Field + " " + e.Reason
}
