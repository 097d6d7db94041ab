package domain

import (
	"time"
)

// FirmStatus is the subscription lifecycle state of a tenant firm.
type FirmStatus string

const (
	FirmActive    FirmStatus = "Active"
	FirmSuspended FirmStatus = "Suspended"
	FirmCancelled FirmStatus = "Cancelled"
)

// IsValid checks that the status is one of the defined constants.
func (s FirmStatus) IsValid() bool {
	switch s {
	case FirmActive, FirmSuspended, FirmCancelled:
		return true
	default:
		return false
	}
}

// Firm is the tenant boundary. Every client, lawyer, case and membership row
// references exactly one firm, and every firm-scoped query filters on firm_id.
type Firm struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Subdomain string     `json:"subdomain" db:"subdomain"`
	Plan      string     `json:"plan" db:"plan"`
	Status    FirmStatus `json:"status" db:"status"`
	MaxUsers  int        `json:"maxUsers" db:"max_users"`
	MaxCases  int        `json:"maxCases" db:"max_cases"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}
