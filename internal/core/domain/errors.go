package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
)

// Intake errors
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrBranchNotFound       = errors.New("branch not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateApplication = errors.New("an active application already exists for this applicant and product")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConflict             = errors.New("concurrent modification detected, retry the operation")
)

// ValidationError reports malformed or missing input fields.
// Fields maps field name to a human-readable problem description.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a field-level problem and returns the error for chaining
func (e *ValidationError) Add(field, problem string) *ValidationError {
	e.Fields[field] = problem
	return e
}

// HasErrors reports whether any field failed validation
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
