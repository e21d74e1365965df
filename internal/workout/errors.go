package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced day, session or session exercise does
	// not exist or does not belong to the claimed parent.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyFinished is returned when finishing a finished session.
	ErrAlreadyFinished = errors.New("session already finished")
)

// ValidationError reports a malformed autosave patch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
