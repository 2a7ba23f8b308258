package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/passvault/internal/errs"
)

// Code classifies a failed dispatch.
type Code uint8

const (
	CodeOK Code = iota
	CodeInvalidArgument
	CodeUnauthenticated
	CodeNotFound
	CodeConflict
	CodeUnavailable
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeUnauthenticated:
		return "Unauthenticated"
	case CodeNotFound:
		return "NotFound"
	case CodeConflict:
		return "Conflict"
	case CodeUnavailable:
		return "Unavailable"
	case CodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
}

// User-facing messages. Detail never leaves the log.
const (
	msgBadCredentials = "invalid username or password"
	msgBadToken       = "invalid token"
	msgUsernameTaken  = "username may already be taken"
	msgKeyExists      = "key already exists"
	msgNotFound       = "not found"
	msgUnavailable    = "storage unavailable"
	msgCanceled       = "request canceled"
	msgInternal       = "internal error"
)

// Error is the only error type returned by Dispatch.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// CodeOf extracts the code of a dispatch error; nil yields CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// toError maps a component error to its terse external form.
func toError(req Request, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return &Error{Code: CodeInvalidArgument, Msg: err.Error()}
	case errors.Is(err, errs.ErrUnauthorized):
		if _, ok := req.(LoginRequest); ok {
			return &Error{Code: CodeUnauthenticated, Msg: msgBadCredentials}
		}
		return &Error{Code: CodeUnauthenticated, Msg: msgBadToken}
	case errors.Is(err, errs.ErrNotFound):
		return &Error{Code: CodeNotFound, Msg: msgNotFound}
	case errors.Is(err, errs.ErrAlreadyExists):
		if _, ok := req.(RegisterRequest); ok {
			return &Error{Code: CodeConflict, Msg: msgUsernameTaken}
		}
		return &Error{Code: CodeConflict, Msg: msgKeyExists}
	case errors.Is(err, errs.ErrUnavailable):
		return &Error{Code: CodeUnavailable, Msg: msgUnavailable}
	case errors.Is(err, context.Canceled):
		return &Error{Code: CodeUnavailable, Msg: msgCanceled}
	default:
		return &Error{Code: CodeInternal, Msg: msgInternal}
	}
}
