package spider

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// The extraction codes map one-to-one onto the failure kinds of a single
// extraction call. None of them are transient, so callers should not retry.
const (
	EINTERNAL       = "internal"
	EINVALID        = "invalid"
	EMISSINGPARENT  = "missing_parent_selector"
	EUNSUPPORTED    = "unsupported_schema_entry"
	EDIALECT        = "unsupported_dialect"
	EEMPTYTRANSPOSE = "empty_transpose_set"
	ESELECTOR       = "selector_evaluation_failure"
)

// Error represents an application-specific error. Field names the schema
// field the error is about, as a dotted path for nested fields, and is
// empty for errors that are not tied to a field.
type Error struct {
	Code    string
	Field   string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("spider error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// ErrorField unwraps an application error and returns the field it names.
func ErrorField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// FieldErrorf is like Errorf but also records the schema field the error is about.
func FieldErrorf(code string, field string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
