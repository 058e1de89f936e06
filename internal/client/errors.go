package client

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by Client wraps exactly one of these.
var (
	// ErrValidation is a local input problem detected before any request is sent.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication is a failed credential exchange.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnauthenticated means there is no active session. No request was sent.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrUnauthorized means the identity may not perform the action, either by
	// local policy (wrapping authz.ErrDenied, no request sent) or by a 403.
	ErrUnauthorized = errors.New("not authorized")
	// ErrSessionRejected means the server answered 401. The session that made the
	// request is cleared unless it was already replaced.
	ErrSessionRejected  = errors.New("session rejected by server")
	ErrTransport        = errors.New("transport failure")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError describes a response whose status did not match the operation.
type StatusError struct {
	Method   string
	Path     string
	Expected int
	Got      int
	// Message is the server's error text when the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: expected %d, got %d", e.Method, e.Path, e.Expected, e.Got)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }
