package models

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks rejected user input. Nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no row carries the requested obligation ID.
	// It is an expected outcome (stale ID, concurrent delete).
	ErrNotFound = errors.New("obligation not found")
	// ErrAlreadySettled is returned when settling a PAID obligation.
	ErrAlreadySettled = errors.New("obligation already settled")
	// ErrNotDeletable is returned when deleting a PAID obligation.
	ErrNotDeletable = errors.New("settled obligations cannot be deleted")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors. It unwraps to ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field error was added.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
