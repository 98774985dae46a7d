package service

import "errors"

var (
	ErrValidation         = errors.New("validation")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("already exists")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStaleToken         = errors.New("stale token")
	ErrNotFound           = errors.New("not found")
	ErrScoringUnavailable = errors.New("scoring unavailable")
	ErrSearchDisabled     = errors.New("search disabled")
)

// ValidationError carries the client facing reason of a rejected input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// Reason returns the client facing message of a validation error, or def.
func Reason(err error, def string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return def
}
