package vendorpay

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/societyhub/societyhub/internal/platform/httpx"
)

var (
	ErrNotFound          = fmt.Errorf("payment %w", httpx.ErrNotFound)
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("payment was modified concurrently")
)

// ValidationError lists the offending fields of a rejected write.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
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

// Unwrap lets callers match with errors.Is(err, httpx.ErrValidation).
func (e *ValidationError) Unwrap() error {
	return httpx.ErrValidation
}

// FieldErrors implements httpx.FieldError.
func (e *ValidationError) FieldErrors() map[string]string {
	return e.Fields
}

func fieldError(field, msg string) *ValidationError {
	v := newValidationError()
	v.add(field, msg)
	return v
}
