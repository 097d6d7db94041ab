package service

import (
	"errors"

	"lexfirm-api/internal/repo"
)

// Sentinel errors shared across services. The HTTP layer maps each to a
// response status; services never touch HTTP codes directly.
var (
	// ErrUnauthorized means the caller's role does not permit the operation.
	ErrUnauthorized = errors.New("insufficient permissions")

	// ErrNotFirmMember means the caller has no membership in the active firm.
	ErrNotFirmMember = errors.New("user is not a member of this firm")

	// ErrLawyerProfileRequired means a caller with the Lawyer role has no
	// lawyer record in the active firm, so case access cannot be resolved.
	ErrLawyerProfileRequired = errors.New("no lawyer profile linked to this account in the firm")

	// ErrClientProfileRequired is the client-side analogue.
	ErrClientProfileRequired = errors.New("no client record linked to this account in the firm")

	// ErrSeatLimitReached means the firm is at its max_users plan limit.
	ErrSeatLimitReached = errors.New("firm has reached its user limit")

	// ErrCaseLimitReached means the firm is at its max_cases plan limit.
	ErrCaseLimitReached = errors.New("firm has reached its case limit")

	// ErrClientNotInFirm means the clientId on a case request does not resolve
	// to a client of the active firm.
	ErrClientNotInFirm = errors.New("client does not belong to this firm")

	// Not-found and conflict conditions surface the repository sentinels.
	ErrFirmNotFound       = repo.ErrFirmNotFound
	ErrUserNotFound       = repo.ErrUserNotFound
	ErrRoleNotFound       = repo.ErrRoleNotFound
	ErrPermissionNotFound = repo.ErrPermissionNotFound
	ErrClientNotFound     = repo.ErrClientNotFound
	ErrLawyerNotFound     = repo.ErrLawyerNotFound
	ErrCaseNotFound       = repo.ErrCaseNotFound
	ErrDocumentNotFound   = repo.ErrDocumentNotFound
	ErrEmailConflict      = repo.ErrEmailConflict
	ErrRoleNameConflict   = repo.ErrRoleNameConflict
	ErrCaseNumberConflict = repo.ErrCaseNumberConflict
	ErrClientInUse        = repo.ErrClientInUse
)
