package model

import (
	"errors"
	"fmt"
)

// Base error kinds, checked with errors.Is().
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDate   = errors.New("invalid date")
	ErrCorruptData   = errors.New("corrupt data")
	ErrPersist       = errors.New("persist failed")
)

// StudentError carries the operation that failed along with its kind.
type StudentError struct {
	Op      string // e.g. "AddStudent", "ParseDate"
	Kind    error  // one of the base kinds above
	Message string
	Err     error // underlying error (optional)
}

func (e *StudentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StudentError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches either the kind or the wrapped error.
func (e *StudentError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewError creates a StudentError without an underlying cause.
func NewError(op string, kind error, message string) *StudentError {
	return &StudentError{Op: op, Kind: kind, Message: message}
}

// WrapError creates a StudentError around err.
func WrapError(op string, kind error, message string, err error) *StudentError {
	return &StudentError{Op: op, Kind: kind, Message: message, Err: err}
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidDate)
}
