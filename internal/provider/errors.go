package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind separates failing to reach a provider from failing to understand
// what it returned.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindMalformed ErrorKind = "malformed_response"
)

// Error classifies a provider poll failure. Both kinds are recovered at the
// worker level; the classification exists for logs, admin messages, and tests.
type Error struct {
	Kind       ErrorKind
	Source     string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, string(e.Kind))

	if e.Source != "" {
		parts = append(parts, e.Source)
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransport reports whether err is a provider communication failure.
func IsTransport(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == KindTransport
}

// IsMalformed reports whether err is a provider response shape mismatch.
func IsMalformed(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == KindMalformed
}
