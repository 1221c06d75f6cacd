package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports malformed or out-of-range input: request parameters
// or ingested rows. It maps to a 400 response with per-field messages.
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

// NotFoundError reports a referenced entity that does not exist. Maps to 404.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func NewNotFoundError(resource string, id ...interface{}) error {
	err := &NotFoundError{Resource: resource}
	if len(id) > 0 {
		err.ID = id[0]
	}
	return err
}

func (err NotFoundError) Error() string {
	if err.ID != nil {
		return fmt.Sprintf("%s with id %v not found", err.Resource, err.ID)
	}
	return err.Resource + " not found"
}

// DatabaseError wraps a storage-layer failure. The generic message is what
// clients see; the cause is retained for logging only.
type DatabaseError struct {
	Msg string
	Err error
}

func NewDatabaseError(msg string, err error) error {
	return &DatabaseError{Msg: msg, Err: err}
}

func (err DatabaseError) Error() string { return err.Msg }

func (err DatabaseError) Unwrap() error { return err.Err }

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
