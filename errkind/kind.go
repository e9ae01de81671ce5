// SPDX-License-Identifier: GPL-3.0-or-later

// Package errkind classifies errors into the implementation-neutral taxonomy
// of error kinds used throughout httpcore, and wraps them with call-visible
// context (the failing kind plus, for routes that were retried, the chain of
// suppressed attempts).
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds from the taxonomy.
type Kind string

// The error kinds. See the package doc and the taxonomy table for when each
// is raised and how the runtime recovers from it.
const (
	InvalidUrl           Kind = "InvalidUrl"
	UnknownHost          Kind = "UnknownHost"
	ConnectFailed        Kind = "ConnectFailed"
	ProtocolError        Kind = "ProtocolError"
	StreamReset          Kind = "StreamReset"
	Timeout              Kind = "Timeout"
	Cancelled            Kind = "Cancelled"
	UnsatisfiableRequest Kind = "UnsatisfiableRequest"
	TooManyRedirects     Kind = "TooManyRedirects"
	BadResponse          Kind = "BadResponse"

	// Refused marks an HTTP/2 stream rejected by a GOAWAY or
	// REFUSED_STREAM before any request bytes were written to it. Such
	// failures are always retriable on a fresh connection (spec.md §7).
	Refused Kind = "Refused"
)

// Error wraps a [Kind] with its cause and, when more than one route was
// attempted for the same call, the errors from prior attempts.
type Error struct {
	// Kind is the classified error kind.
	Kind Kind

	// Cause is the underlying error, if any.
	Cause error

	// Suppressed holds the failures of prior attempts (other routes,
	// other redirects) when a call tried more than one before failing.
	Suppressed []error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("httpcore: %s: %s", e.Kind, e.Cause.Error())
	}
	return fmt.Sprintf("httpcore: %s", e.Kind)
}

// Unwrap allows [errors.Is] and [errors.As] to see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an [*Error] of the given kind wrapping cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Newf builds an [*Error] of the given kind with a formatted cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// WithSuppressed returns a copy of err with additional suppressed failures
// recorded, used by the route planner and the retry policy to surface every
// attempt's failure alongside the final one.
func WithSuppressed(err error, suppressed ...error) error {
	var ke *Error
	if errors.As(err, &ke) {
		clone := *ke
		clone.Suppressed = append(append([]error{}, ke.Suppressed...), suppressed...)
		return &clone
	}
	return &Error{Kind: BadResponse, Cause: err, Suppressed: suppressed}
}

// Is reports whether err is classified as kind, looking through wrapping.
func Is(err error, kind Kind) bool {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}

// KindOf returns the classified kind of err, or "" if err does not carry one.
func KindOf(err error) Kind {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return ""
}
