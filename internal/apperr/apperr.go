// Package apperr carries the error taxonomy shared by every component:
// a stable kind tag plus a human-readable message. Handlers map kinds to
// HTTP status codes; callers branch on kind, never on message text.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindTokenExpired   Kind = "TOKEN_EXPIRED"
	KindTokenMismatch  Kind = "TOKEN_MISMATCH"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindTransient      Kind = "TRANSIENT"
	KindInternal       Kind = "INTERNAL"
)

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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind tag from any error in the chain,
// defaulting to Internal for untagged errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller may retry with backoff.
func Retryable(err error) bool { return KindOf(err) == KindTransient }

// FromStore tags a raw store failure: deadline and cancellation become
// Transient (retry with backoff), anything else is Internal.
func FromStore(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindTransient, "store unavailable", err)
	}
	return Wrap(KindInternal, "store failure", err)
}
