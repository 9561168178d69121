package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// accessDenied signals that an authenticated-only action was attempted
// by an anonymous actor. It is distinct from validation errors and maps
// to a 401 at the API boundary.
type accessDenied struct {
	message string
}

func NewAccessDeniedError(msg string) error {
	return &accessDenied{message: msg}
}

func (e accessDenied) Error() string {
	return e.message
}

func IsAccessDenied(err error) bool {
	_, ok := errors.Cause(err).(*accessDenied)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
