package domain

import "errors"

// Sentinel errors used across the service. Callers classify failures with
// errors.Is and wrap additional context with fmt.Errorf("%w: ...").
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrTooManyRequests  = errors.New("too many requests")
)
