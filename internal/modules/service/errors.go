package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// Service layer errors. Handlers map them to HTTP statuses.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrStorageFailure       = errors.New("storage failure")
	ErrConcurrencyViolation = errors.New("concurrent modification in progress")
	ErrConflict             = errors.New("conflict")
)

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// fromOzzo converts ozzo-validation field errors into a ValidationError.
// Internal rule errors are returned unchanged.
func fromOzzo(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		ve := &ValidationError{Fields: make(map[string]string, len(errs))}
		for field, fe := range errs {
			ve.Fields[field] = fe.Error()
		}
		return ve
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return internal.InternalError()
	}
	return &ValidationError{Fields: map[string]string{"input": err.Error()}}
}

// GenerationError is a failed completion call. Message is safe to show to callers.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() []error { return []error{ErrGenerationFailed, e.Err} }

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
