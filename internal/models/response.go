package models

// Error codes returned to API clients alongside HTTP status codes.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeAssetMissing  = "ASSET_NOT_FOUND"
	ErrCodeGeneration    = "GENERATION_FAILED"
	ErrCodeStoreDown     = "STORE_UNAVAILABLE"
	ErrCodeInconsistency = "ASSET_INCONSISTENCY"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TaskResponse is returned when an operation is accepted for async execution.
type TaskResponse struct {
	TaskID string `json:"task_id"`
}
