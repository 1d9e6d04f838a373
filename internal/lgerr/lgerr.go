// Package lgerr defines the error kinds shared by the workflow core,
// the persistence wrapper and the API.
package lgerr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing required field or a failed
	// transition guard. The record is left unmutated.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a task_id absent from the loaded snapshot.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an actor whose role or ownership does not
	// permit the requested action.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable marks a transport or auth failure talking
	// to the table store.
	ErrStoreUnavailable = errors.New("table store unavailable")
	// ErrConflict marks a save rejected because records read by the
	// cycle were changed by another writer in the meantime.
	ErrConflict = errors.New("conflict")
)

// Error carries a kind and a human readable message.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches the error's kind as well as anything it wraps.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a transport error from the table store.
func Unavailable(op string, err error) error {
	return &Error{Kind: ErrStoreUnavailable, Msg: op, Err: err}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrStoreUnavailable, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
