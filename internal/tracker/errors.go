package tracker

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// Precondition violations. Operations returning one of these left the
// tracker untouched.
var (
	ErrAlreadyActive   = errors.New("an entry is already active")
	ErrNoActiveEntry   = errors.New("no active entry")
	ErrNotRunning      = errors.New("timer is not running")
	ErrNotPaused       = errors.New("timer is not paused")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrProjectNotFound = errors.New("project not found")
)

// ValidationError reports rejected input. No mutation happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is an illegal-transition or lookup
// failure rather than bad input.
func IsPrecondition(err error) bool {
	for _, target := range []error{ErrAlreadyActive, ErrNoActiveEntry, ErrNotRunning, ErrNotPaused, ErrEntryNotFound, ErrProjectNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
