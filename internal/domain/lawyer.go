package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Lawyer is a firm-owned attorney profile. Cases reference lawyers through a
// join table, constrained to lawyers of the same firm. The optional UserID
// links the profile to a login; a caller with the Lawyer role must have a
// lawyer record in the active firm or case access fails.
type Lawyer struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Specialization *string   `json:"specialization,omitempty" db:"specialization"`
	FirmID         string    `json:"firmId" db:"firm_id"`
	UserID         *string   `json:"userId,omitempty" db:"user_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateLawyerRequest creates a lawyer profile in the active firm.
type CreateLawyerRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=255"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Specialization *string `json:"specialization,omitempty" validate:"omitempty,max=255"`
	UserID         *string `json:"userId,omitempty"`
}

// Validate sanitizes and validates the request.
func (r *CreateLawyerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateLawyerRequest applies a partial update; nil fields are left unchanged.
type UpdateLawyerRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Specialization *string `json:"specialization,omitempty" validate:"omitempty,max=255"`
}

// Validate sanitizes and validates the request.
func (r *UpdateLawyerRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}

	validate := validator.New()
	return validate.Struct(r)
}
