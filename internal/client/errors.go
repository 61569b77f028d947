package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindForbidden Kind = "forbidden"
	KindNotFound  Kind = "not_found"
	KindServer    Kind = "server"
	KindRejected  Kind = "rejected"
	KindTransport Kind = "transport"
)

// Error is returned by every service call that did not succeed.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a client error, or KindTransport for anything else.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransport
}

// MessageOf returns the message carried by a client error.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsForbidden reports whether err is a 403 from the backend.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}
