// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return *Error values; handlers map the Code to a status.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeValidation   Code = "validation"
	CodeInvalidState Code = "invalid_state"
	CodeDuplicate    Code = "duplicate"
	CodePermission   Code = "permission"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error { return NewError(CodeNotFound, message, nil) }

func Validation(message string) *Error { return NewError(CodeValidation, message, nil) }

// ValidationFields reports per-field problems in one error.
func ValidationFields(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

func InvalidState(message string) *Error { return NewError(CodeInvalidState, message, nil) }

func Duplicate(message string) *Error { return NewError(CodeDuplicate, message, nil) }

func Permission(message string) *Error { return NewError(CodePermission, message, nil) }

func Unauthorized(message string) *Error { return NewError(CodeUnauthorized, message, nil) }

func Internal(message string, err error) *Error { return NewError(CodeInternal, message, err) }

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
