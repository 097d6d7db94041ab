package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Client is a firm-owned party a case is opened for. The optional UserID links
// the client to a portal login; the access gate resolves a caller with the
// Client role to their client record through (user_id, firm_id).
type Client struct {
	ID         string    `json:"id" db:"id"`
	FullName   string    `json:"fullName" db:"full_name"`
	Email      *string   `json:"email,omitempty" db:"email"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	ClientType string    `json:"clientType" db:"client_type"`
	Status     string    `json:"status" db:"status"`
	FirmID     string    `json:"firmId" db:"firm_id"`
	UserID     *string   `json:"userId,omitempty" db:"user_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateClientRequest creates a client in the active firm.
type CreateClientRequest struct {
	FullName   string  `json:"fullName" validate:"required,min=1,max=255"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	ClientType string  `json:"clientType" validate:"omitempty,oneof=individual organization"`
	UserID     *string `json:"userId,omitempty"`
}

// Validate sanitizes and validates the request.
func (r *CreateClientRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.ClientType == "" {
		r.ClientType = "individual"
	}

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateClientRequest applies a partial update; nil fields are left unchanged.
type UpdateClientRequest struct {
	FullName   *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=255"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	ClientType *string `json:"clientType,omitempty" validate:"omitempty,oneof=individual organization"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// Validate sanitizes and validates the request.
func (r *UpdateClientRequest) Validate() error {
	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		r.FullName = &trimmed
	}

	validate := validator.New()
	return validate.Struct(r)
}
