package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resource conflict")

	// ErrInvalidCredentials is the only error a credentials login ever reports.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSignInFailed aborts a provider sign-in before any token is issued.
	ErrSignInFailed = errors.New("sign-in failed")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
