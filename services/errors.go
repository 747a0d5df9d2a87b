package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by write operations whose target does not
	// exist. Lookups return a nil record instead.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable means the store could not complete the write,
	// including when allocation retries ran out.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// ValidationError reports the rule a write violated. Nothing is persisted
// when one is returned.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, rule, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
