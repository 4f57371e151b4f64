// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string            `json:"type,omitempty"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// ValidationProblem sends a 400 problem listing the offending fields.
func ValidationProblem(w http.ResponseWriter, detail string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: detail,
		Fields: fields,
	})
}

// DecodeJSON decodes JSON request body into the target struct, rejecting unknown fields.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
