package domain

import (
	"time"
)

// CaseDocument is a file attached to a case. UploadedByType records the
// uploader's role name at upload time; the role may change later without
// rewriting history. UploadedByID is empty once the uploading identity has
// been reclaimed. FilePath is the storage key in the configured blob
// backend, never a client-facing value.
type CaseDocument struct {
	ID             string    `json:"id" db:"id"`
	FileName       string    `json:"fileName" db:"file_name"`
	FilePath       string    `json:"-" db:"file_path"`
	FileType       *string   `json:"fileType,omitempty" db:"file_type"`
	UploadedByID   string    `json:"uploadedById" db:"uploaded_by_id"`
	UploadedByType string    `json:"uploadedByType" db:"uploaded_by_type"`
	CaseID         string    `json:"caseId" db:"case_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
