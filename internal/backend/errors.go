package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
)

// Error is returned by every Client method that fails.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("backend %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a backend error, or "" when err is not one.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
