// Package errors defines the coded errors returned across spruce.
//
// Every error a caller may want to react to carries a [Code]. The CLI
// prints the message, the HTTP API maps the code's [Class] to a status,
// and tests match on the code rather than on text.
//
// Repository inconsistencies such as dangling manifest references are not
// errors; package repo collects them as diagnostics.
//
//	err := errors.New(errors.ErrCodeInvalidInput, "keep must not be negative, got %d", keep)
//	if errors.ClassOf(err) == errors.ClassInvalid {
//	    // reject the request
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidRecord  Code = "INVALID_RECORD"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"
	ErrCodeRepoNotFound    Code = "REPO_NOT_FOUND"
	ErrCodeRunNotFound     Code = "RUN_NOT_FOUND"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Class groups codes by who is at fault.
type Class int

const (
	// ClassInternal covers plain errors and unknown codes.
	ClassInternal Class = iota
	// ClassInvalid means the caller supplied bad input or configuration.
	ClassInvalid
	// ClassNotFound means a named repository, package, version or run is
	// missing.
	ClassNotFound
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:    ClassInvalid,
	ErrCodeInvalidPackage:  ClassInvalid,
	ErrCodeInvalidRecord:   ClassInvalid,
	ErrCodeInvalidConfig:   ClassInvalid,
	ErrCodeInvalidFormat:   ClassInvalid,
	ErrCodeInvalidPath:     ClassInvalid,
	ErrCodePackageNotFound: ClassNotFound,
	ErrCodeVersionNotFound: ClassNotFound,
	ErrCodeRepoNotFound:    ClassNotFound,
	ErrCodeRunNotFound:     ClassNotFound,
}

// Class returns the class c belongs to.
func (c Code) Class() Class { return classes[c] }

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := asError(err); e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether err's outermost code is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// ClassOf returns the class of err's code. Errors without a code are
// [ClassInternal].
func ClassOf(err error) Class { return GetCode(err).Class() }

// IsNotFound reports whether err is of [ClassNotFound].
func IsNotFound(err error) bool { return ClassOf(err) == ClassNotFound }

// UserMessage returns the message without the code prefix or cause for
// coded errors, and err.Error() otherwise.
func UserMessage(err error) string {
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
