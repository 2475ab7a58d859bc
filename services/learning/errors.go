package learning

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrAccessDenied        = errors.New("access denied")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrAttemptLimitReached = errors.New("maximum number of attempts reached")
	ErrAlreadySubmitted    = errors.New("attempt already submitted")
	ErrAttemptExpired      = errors.New("attempt time limit exceeded")
	ErrOutOfRange          = errors.New("score out of range")
	ErrNotFound            = errors.New("not found")
	ErrValidationFailed    = errors.New("validation failed")
)

// ValidationError carries per-field messages for malformed input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func invalidField(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// notFound maps gorm's missing-row error onto ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
