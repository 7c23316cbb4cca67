// Package apperr defines the error taxonomy shared by the assessment and
// progress engine. Every failure a caller can observe is either an
// *Error with a Kind, or a plain wrapped error for infrastructure faults
// (database I/O) that have no domain meaning.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell "the model produced nothing
// useful" apart from "the infrastructure is down".
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindProviderTimeout     Kind = "provider_timeout"
	KindProviderFault       Kind = "provider_fault"
	KindParseFailure        Kind = "parse_failure"
	KindValidation          Kind = "validation"
)

// Error is a classified failure scoped to a single operation.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "quiz.generate".
	Op string
	// Raw holds the raw model output when one was received.
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithRaw attaches raw model output to the error and returns it.
func (e *Error) WithRaw(raw string) *Error {
	e.Raw = raw
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RawOf returns the raw model output attached to err, if any.
func RawOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return ""
}
