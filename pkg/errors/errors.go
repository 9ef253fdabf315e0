// Package errors provides code-tagged errors for signboard.
//
// Every failure that crosses a package boundary carries a [Code]. The CLI
// prints [UserMessage] and the HTTP API answers with [HTTPStatus] and the
// code, so callers switch on codes instead of matching message text.
//
// The layout engine itself fails in four ways, none of which may stop a
// display from rendering:
//
//	UNKNOWN_WIDGET_TYPE      an instance was requested for an unregistered type
//	DECODE_FAILURE           a token could not be decoded; the default is shown
//	OUT_OF_BOUNDS_PLACEMENT  a widget extends past the visible grid; it is clipped
//	COLLISION_UNRESOLVABLE   the grid engine reverted a gesture it could not settle
//
// Usage:
//
//	err := errors.New(errors.ErrCodeUnknownWidgetType, "unknown widget type %q", typ)
//	if errors.Is(err, errors.ErrCodeUnknownWidgetType) {
//	    // offer the registered types
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeUnknownWidgetType     Code = "UNKNOWN_WIDGET_TYPE"
	ErrCodeDecodeFailure         Code = "DECODE_FAILURE"
	ErrCodeOutOfBounds           Code = "OUT_OF_BOUNDS_PLACEMENT"
	ErrCodeCollisionUnresolvable Code = "COLLISION_UNRESOLVABLE"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidScript Code = "INVALID_SCRIPT"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeUnavailable   Code = "UNAVAILABLE"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
)

type codeInfo struct {
	status int
	layout bool
}

var codes = map[Code]codeInfo{
	ErrCodeUnknownWidgetType:     {http.StatusUnprocessableEntity, true},
	ErrCodeDecodeFailure:         {http.StatusBadRequest, true},
	ErrCodeOutOfBounds:           {http.StatusUnprocessableEntity, true},
	ErrCodeCollisionUnresolvable: {http.StatusConflict, true},
	ErrCodeInvalidInput:          {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:         {http.StatusBadRequest, false},
	ErrCodeInvalidScript:         {http.StatusUnprocessableEntity, false},
	ErrCodeNotFound:              {http.StatusNotFound, false},
	ErrCodeUnavailable:           {http.StatusServiceUnavailable, false},
}

// Error is an error with a code, a message for humans and an optional
// cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of the outermost *Error without its
// code, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus returns the status the HTTP API answers err with. Errors
// without a known code are internal errors.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// IsLayoutFailure reports whether err is one of the four layout engine
// failures. These are handled where they occur and never abort a display.
func IsLayoutFailure(err error) bool {
	return codes[GetCode(err)].layout
}
