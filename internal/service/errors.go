package service

import "errors"

// Error taxonomy. Every error a service returns on purpose wraps exactly one
// of these, so the HTTP layer can map with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDanglingReference  = errors.New("dangling reference")
	ErrStorageUnavailable = errors.New("object storage is not configured")
)
