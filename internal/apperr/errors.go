// Package apperr defines the error kinds shared by the engine and its transports.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownNoteName = errors.New("unknown note name")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error carries the offending field and value alongside its kind.
// errors.Is(err, ErrNotFound) and friends match on Kind.
type Error struct {
	Kind  error
	Field string
	Value string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Kind, e.Field, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports an unknown catalog name.
func NotFound(field, value string) error {
	return &Error{Kind: ErrNotFound, Field: field, Value: value}
}

// UnknownNoteName reports a note name missing from the naming table.
func UnknownNoteName(field, value string) error {
	return &Error{Kind: ErrUnknownNoteName, Field: field, Value: value}
}

// InvalidArgument reports an out-of-domain parameter.
func InvalidArgument(field, value string) error {
	return &Error{Kind: ErrInvalidArgument, Field: field, Value: value}
}

// Field returns the field named by err, or "" when err carries none.
func Field(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
