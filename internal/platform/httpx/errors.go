// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// FieldError is implemented by validation errors that know their offending fields.
type FieldError interface {
	error
	FieldErrors() map[string]string
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var fieldErr FieldError
	switch {
	case errors.As(err, &fieldErr):
		ValidationProblem(w, fieldErr.Error(), fieldErr.FieldErrors())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
