package models

import "errors"

// Application-wide standard errors
var (
	// Resource errors
	ErrPageNotFound         = errors.New("page not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAlreadyExists = errors.New("project with this name already exists")
	ErrTaskNotFound         = errors.New("task not found")

	// Asset Store errors
	ErrAssetNotFound = errors.New("asset pair not found")
	// ErrRenameInconsistency means a paired move partially succeeded and the
	// rollback failed too: one file of the pair is orphaned on disk. Must be
	// surfaced, never swallowed.
	ErrRenameInconsistency = errors.New("asset pair rename left inconsistent state")

	// Generation Gateway errors
	ErrGenerationFailed  = errors.New("generation failed")
	ErrGenerationTimeout = errors.New("generation timed out")

	// Store errors
	ErrStoreUnavailable = errors.New("document store unavailable")

	// Lifecycle errors
	ErrInvalidTransition = errors.New("invalid page status transition")

	// General Request/Server Errors
	ErrInvalidInput   = errors.New("invalid input data")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)
