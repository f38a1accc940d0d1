package services

import "errors"

// Failure taxonomy surfaced by every service in this package. Callers map
// these onto transport status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
)
