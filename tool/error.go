package tool

import (
	"errors"
	"strings"
)

// Machine-readable error codes surfaced by spec handling and command
// compilation. All of these are detected before any process is spawned.
const (
	// ErrorCodeInvalidTarget is returned for a malformed module target.
	ErrorCodeInvalidTarget = "INVALID_TARGET"
	// ErrorCodeEmptyTemplate is returned when a command template is empty.
	ErrorCodeEmptyTemplate = "EMPTY_TEMPLATE"
	// ErrorCodeUnresolvedPlaceholder is returned when a template references
	// an undeclared placeholder.
	ErrorCodeUnresolvedPlaceholder = "UNRESOLVED_PLACEHOLDER"
	// ErrorCodeMissingRequired is returned when a required parameter has no value.
	ErrorCodeMissingRequired = "MISSING_REQUIRED"
	// ErrorCodeCoerceFailed is returned when a value cannot be coerced to its kind.
	ErrorCodeCoerceFailed = "COERCE_FAILED"
	// ErrorCodeTokenizeFailed is returned when a substituted command
	// template cannot be split into argv tokens.
	ErrorCodeTokenizeFailed = "TOKENIZE_FAILED"
	// ErrorCodeUnknownMode is returned for an unrecognized invocation mode.
	ErrorCodeUnknownMode = "UNKNOWN_MODE"
	// ErrorCodeUnknownKind is returned for an unrecognized parameter kind.
	ErrorCodeUnknownKind = "UNKNOWN_KIND"
)

// Error is a structured validation error that keeps a machine code next
// to the human message so callers can branch without string matching.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return "tool: validation failed"
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return code + ": " + msg
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(code, message string, cause error) *Error {
	if strings.TrimSpace(message) == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewError constructs a structured Error with the given code and message.
func NewError(code, message string, cause error) *Error {
	return newError(code, message, cause)
}

// ErrorCode returns the machine code carried by err, or "" when err is
// not a *Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}
