// Package apperror defines the structured error kinds surfaced at service
// boundaries. Per-platform publish failures are never represented here; they
// are always returned as data (model.PublishOutcome).
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Unauthenticated       Kind = "unauthenticated"
	InvalidArgument       Kind = "invalid_argument"
	NotFound              Kind = "not_found"
	ArtifactUnavailable   Kind = "artifact_unavailable"
	ObjectNotFound        Kind = "object_not_found"
	AccessDenied          Kind = "access_denied"
	TransientStorageError Kind = "transient_storage_error"
	Internal              Kind = "internal"
)

// Error carries a kind, a caller-visible message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
