package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeProblem(t *testing.T, res *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	return problem
}

func TestWriteSetsContentTypeAndStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusNotFound, TypeNotFound, "Candidate not found", nil, "test")

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	problem := decodeProblem(t, res)
	require.Equal(t, TypeNotFound, problem.Type)
	require.Equal(t, "Candidate not found", problem.Title)
	require.Equal(t, 404, problem.Status)
	require.Equal(t, "/api/v1/candidates", problem.Instance)
}

func TestWriteExposesErrorInDevelopment(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeServerError, "Server error",
		errors.New("pq: connection refused"), "development")

	problem := decodeProblem(t, res)
	require.Equal(t, "pq: connection refused", problem.Detail)
}

func TestWriteHidesErrorInProduction(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeServerError, "Server error",
		errors.New("pq: connection refused"), "production")

	problem := decodeProblem(t, res)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), problem.Detail)
	require.NotContains(t, problem.Detail, "connection refused")
}

func TestWriteWithDetailOverridesError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, TypeValidationError, "Validation failed",
		errors.New("raw error"), "development", WithDetail("limit must be between 1 and 200"))

	problem := decodeProblem(t, res)
	require.Equal(t, "limit must be between 1 and 200", problem.Detail)
}

func TestWriteWithErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, TypeValidationError, "Validation failed", nil, "test",
		WithErrors(map[string]interface{}{"required_skills": "must not be empty"}))

	problem := decodeProblem(t, res)
	require.Equal(t, "must not be empty", problem.Errors["required_skills"])
}

func TestWriteProblemMarshalsDirectly(t *testing.T) {
	res := httptest.NewRecorder()

	WriteProblem(res, ProblemDetails{
		Type:   TypeRateLimited,
		Title:  "Too many requests",
		Status: http.StatusTooManyRequests,
	})

	require.Equal(t, http.StatusTooManyRequests, res.Code)
	problem := decodeProblem(t, res)
	require.Equal(t, TypeRateLimited, problem.Type)
}
