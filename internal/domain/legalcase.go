package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CaseStatus is the lifecycle label of a case. Status transitions are
// free-form: any defined value may follow any other.
type CaseStatus string

const (
	CaseOpen   CaseStatus = "Open"
	CaseOnHold CaseStatus = "On Hold"
	CaseAppeal CaseStatus = "Appeal"
	CaseClosed CaseStatus = "Closed"
)

// IsValid checks that the status is one of the defined constants.
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseOpen, CaseOnHold, CaseAppeal, CaseClosed:
		return true
	default:
		return false
	}
}

// Case is a legal matter owned by a firm, linked to exactly one client of the
// same firm and zero or more lawyers of the same firm. FirmID is immutable
// after creation and is the authorization boundary for every read and write.
type Case struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	CaseNumber  string     `json:"caseNumber" db:"case_number"`
	CaseType    *string    `json:"caseType,omitempty" db:"case_type"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      CaseStatus `json:"status" db:"status"`
	FirmID      string     `json:"firmId" db:"firm_id"`
	ClientID    string     `json:"clientId" db:"client_id"`
	OpenedAt    time.Time  `json:"openedAt" db:"opened_at"`
	ClosedAt    *time.Time `json:"closedAt,omitempty" db:"closed_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// LawyerIDs is the assigned-lawyer set, loaded through case_lawyers.
	LawyerIDs []string `json:"lawyerIds"`

	// Documents is populated on single-case reads.
	Documents []CaseDocument `json:"documents,omitempty"`
}

// IsAssigned reports whether the lawyer is in the case's assignment set.
func (c *Case) IsAssigned(lawyerID string) bool {
	for _, id := range c.LawyerIDs {
		if id == lawyerID {
			return true
		}
	}
	return false
}

// CreateCaseRequest opens a case in the active firm. Lawyer ids that do not
// resolve to a lawyer of the same firm are silently dropped.
type CreateCaseRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	CaseNumber  string   `json:"caseNumber" validate:"required,min=1,max=100"`
	CaseType    *string  `json:"caseType,omitempty" validate:"omitempty,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	ClientID    string   `json:"clientId" validate:"required"`
	LawyerIDs   []string `json:"lawyerIds,omitempty"`
}

// Validate sanitizes and validates the request.
func (r *CreateCaseRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.CaseNumber = strings.TrimSpace(r.CaseNumber)

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateCaseRequest is a partial update. Nil fields keep their current value.
// LawyerIDs, when present, replaces the full assignment set rather than
// merging with it. RemoveDocumentIDs deletes the listed documents. All parts
// of the update run inside a single transaction.
type UpdateCaseRequest struct {
	Title             *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	CaseNumber        *string     `json:"caseNumber,omitempty" validate:"omitempty,min=1,max=100"`
	CaseType          *string     `json:"caseType,omitempty" validate:"omitempty,max=100"`
	Description       *string     `json:"description,omitempty" validate:"omitempty,max=10000"`
	Status            *CaseStatus `json:"status,omitempty"`
	ClientID          *string     `json:"clientId,omitempty"`
	LawyerIDs         *[]string   `json:"lawyerIds,omitempty"`
	RemoveDocumentIDs []string    `json:"removeDocumentIds,omitempty"`
}

// Validate sanitizes and validates the request.
func (r *UpdateCaseRequest) Validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
	if r.Status != nil && !r.Status.IsValid() {
		return &InvalidFieldError{Field: "status", Reason: "must be one of Open, On Hold, Appeal, Closed"}
	}

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateCaseStatusRequest changes only the status label. ClosedAt is set when
// the status becomes Closed and cleared otherwise.
type UpdateCaseStatusRequest struct {
	Status CaseStatus `json:"status" validate:"required"`
}

// Validate validates the request.
func (r *UpdateCaseStatusRequest) Validate() error {
	if !r.Status.IsValid() {
		return &InvalidFieldError{Field: "status", Reason: "must be one of Open, On Hold, Appeal, Closed"}
	}

	validate := validator.New()
	return validate.Struct(r)
}
