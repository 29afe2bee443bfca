package errs

import (
	"errors"
	"fmt"
)

// Error is the concrete type returned for every archivey failure. It
// carries a closed CodeError kind plus an optional cause, mirroring
// nabbar/golib/errors.Error without that package's cross-package trace
// plumbing (archivey has a single call site per error, so a frame stack
// buys nothing here).
type Error struct {
	code  CodeError
	msg   string
	cause error
}

// New builds an Error of the given kind. extra, when non-empty, is appended
// to the registered message (e.g. a member name or a path) the way
// nabbar/golib/errors.New concatenates caller-supplied context.
func New(code CodeError, extra string, cause error) *Error {
	return &Error{code: code, msg: extra, cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.code.Message()
	if e.msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.msg)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.cause.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Code reports the error kind, independent of any wrapping.
func (e *Error) Code() CodeError {
	if e == nil {
		return UnknownError
	}
	return e.code
}

// Is lets errors.Is(err, errs.New(errs.ErrXxx, "", nil)) style checks work by
// comparing codes rather than pointer identity.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return e.code == o.code
	}
	return false
}

// Code extracts the CodeError carried by err, if any, and UnknownError
// otherwise. It walks the Unwrap chain the same way errors.As does.
func Code(err error) CodeError {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return UnknownError
}

// Is reports whether err (or anything it wraps) carries the given kind.
func Is(err error, code CodeError) bool {
	return Code(err) == code
}
