// Package apperr defines the error taxonomy shared by stores, the review
// workflow and the HTTP layer.
//
//   - ErrUnauthenticated: no actor on the request (401)
//   - ErrUnauthorized: actor role not permitted (403)
//   - ErrNotFound: referenced record missing (404)
//   - ErrInvalidStateTransition: record not in the state the operation needs (409)
//   - ValidationError: missing or malformed input (400)
//   - StoreError: persistence failure, surfaced without internals (500)
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated        = errors.New("authentication required")
	ErrUnauthorized           = errors.New("not permitted")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflict               = errors.New("conflict")
)

// Unauthorized wraps ErrUnauthorized with a reason.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUnauthorized)
}

// NotFound reports a missing record of the given kind ("application", "cohort", ...).
func NotFound(kind string) error {
	return fmt.Errorf("%s %w", kind, ErrNotFound)
}

// InvalidTransition reports a review or grading attempt on a record that
// already left its initial state.
func InvalidTransition(kind, current string) error {
	return fmt.Errorf("%s is already %s: %w", kind, current, ErrInvalidStateTransition)
}

// Conflict reports a duplicate (e.g. a second pending application).
func Conflict(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflict)
}

// FieldError is a validation problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field problems.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMap returns field → message, for JSON responses.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Collector accumulates field errors; Err returns nil when none were added.
type Collector struct {
	fields []FieldError
}

// Add records a problem with field.
func (c *Collector) Add(field, message string) {
	c.fields = append(c.fields, FieldError{Field: field, Message: message})
}

// Check adds the problem when cond is false.
func (c *Collector) Check(cond bool, field, message string) {
	if !cond {
		c.Add(field, message)
	}
}

// Err returns the collected ValidationError or nil.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	fields := append([]FieldError(nil), c.fields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Fields: fields}
}

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError unless it is nil or already classified.
func Store(op string, err error) error {
	if err == nil || IsClassified(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsClassified reports whether err already belongs to the taxonomy.
func IsClassified(err error) bool {
	var ve *ValidationError
	var se *StoreError
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrConflict) ||
		errors.As(err, &ve) ||
		errors.As(err, &se)
}
