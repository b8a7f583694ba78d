package storage

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the Gateway. Match them with errors.Is.
var (
	// ErrNotConfigured is returned by every operation of a disabled gateway.
	ErrNotConfigured = errors.New("storage not configured")
	// ErrNotFound is returned by Download and Delete when the object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrTransport covers every other failure talking to the remote store.
	ErrTransport = errors.New("storage transport failure")
)

// Error is the typed failure returned by Gateway operations.
type Error struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := "storage: " + e.Op
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure kind carried by err, or nil when err is not a gateway error.
func KindOf(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return nil
}

func notFound(err error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, err)
}
