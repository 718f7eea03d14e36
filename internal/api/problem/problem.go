// Package problem writes RFC 7807 problem+json error responses.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Type URLs used across the API.
const (
	TypeServerError     = "https://talentpulse.io/problems/server-error"
	TypeValidationError = "https://talentpulse.io/problems/validation-error"
	TypeNotFound        = "https://talentpulse.io/problems/not-found"
	TypeUnauthorized    = "https://talentpulse.io/problems/unauthorized"
	TypeForbidden       = "https://talentpulse.io/problems/forbidden"
	TypeRateLimited     = "https://talentpulse.io/problems/rate-limited"
)

type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Errors   map[string]interface{} `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]interface{}) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write sends a problem+json response. In development and test environments
// the underlying error message is exposed as the detail; in production only
// the generic status text is returned.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && status >= 500 {
		logger := zerolog.Ctx(r.Context())
		logger.Error().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	} else if err != nil && status >= 400 {
		logger := zerolog.Ctx(r.Context())
		logger.Warn().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
