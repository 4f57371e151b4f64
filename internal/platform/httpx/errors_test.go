package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldErr struct{ fields map[string]string }

func (e fieldErr) Error() string                  { return "invalid input" }
func (e fieldErr) FieldErrors() map[string]string { return e.fields }

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		fields map[string]string
	}{
		{name: "not found", err: fmt.Errorf("payment %w", ErrNotFound), status: http.StatusNotFound},
		{name: "validation", err: fmt.Errorf("query: %w", ErrValidation), status: http.StatusBadRequest},
		{name: "field errors", err: fieldErr{fields: map[string]string{"dueDate": "too early"}}, status: http.StatusBadRequest, fields: map[string]string{"dueDate": "too early"}},
		{name: "unknown", err: errors.New("disk on fire"), status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.status, problem.Status)
			assert.Equal(t, tc.fields, problem.Fields)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}
