package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/talentpulse/server/internal/api/middleware"
	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/auth"
	"github.com/talentpulse/server/internal/domain/candidates"
	"github.com/talentpulse/server/internal/redact"
)

type CandidatesHandler struct {
	Service  *candidates.Service
	Validate *validator.Validate
	Env      string
}

func NewCandidatesHandler(service *candidates.Service, env string) *CandidatesHandler {
	return &CandidatesHandler{
		Service:  service,
		Validate: validator.New(),
		Env:      env,
	}
}

type candidateSummary struct {
	ULID           string   `json:"ulid"`
	FullName       string   `json:"full_name"`
	Headline       string   `json:"headline,omitempty"`
	CurrentTitle   string   `json:"current_title,omitempty"`
	CurrentCompany string   `json:"current_company,omitempty"`
	Location       string   `json:"location,omitempty"`
	Skills         []string `json:"skills"`
	MatchScore     int      `json:"match_score"`
	Status         string   `json:"status"`
	Source         string   `json:"source"`
}

type candidateDetail struct {
	candidateSummary

	Email          string                      `json:"email,omitempty"`
	Phone          string                      `json:"phone,omitempty"`
	WorkExperience []candidates.WorkExperience `json:"work_experience"`
	Education      []candidates.Education      `json:"education"`

	SkillScore      int     `json:"skill_score"`
	ExperienceScore int     `json:"experience_score"`
	CultureScore    int     `json:"culture_score"`
	Percentile      float64 `json:"percentile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listResponse struct {
	Items      []candidateSummary `json:"items"`
	NextCursor string             `json:"next_cursor"`
}

func (h *CandidatesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	filters, page, err := candidates.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	viewPII := canViewPII(r)
	items := make([]candidateSummary, 0, len(result.Candidates))
	for _, candidate := range result.Candidates {
		summary := summaryView(candidate)
		if !viewPII {
			summary.Location = redact.Location(summary.Location)
		}
		items = append(items, summary)
	}

	writeJSON(w, http.StatusOK, listResponse{Items: items, NextCursor: result.NextCursor}, contentTypeFromRequest(r))
}

func (h *CandidatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	ulidValue := strings.TrimSpace(pathParam(r, "id"))
	if err := candidates.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	candidate, err := h.Service.GetByULID(r.Context(), ulidValue)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Candidate not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	detail := detailView(*candidate)
	if !canViewPII(r) {
		detail.Email = redact.Email(detail.Email)
		detail.Phone = redact.Phone(detail.Phone)
		detail.Location = redact.Location(detail.Location)
	}

	writeJSON(w, http.StatusOK, detail, contentTypeFromRequest(r))
}

// Score evaluates a candidate against a role profile supplied in the body.
// The stored scores are untouched; this is a what-if calculation.
func (h *CandidatesHandler) Score(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	ulidValue := strings.TrimSpace(pathParam(r, "id"))
	if err := candidates.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	var profile candidates.RoleProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := h.Validate.Struct(profile); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid role profile", err, h.Env)
		return
	}

	breakdown, err := h.Service.ScoreAgainst(r.Context(), ulidValue, profile)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Candidate not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, breakdown, contentTypeFromRequest(r))
}

func summaryView(candidate candidates.Candidate) candidateSummary {
	skills := candidate.Skills
	if skills == nil {
		skills = []string{}
	}
	return candidateSummary{
		ULID:           candidate.ULID,
		FullName:       candidate.FullName,
		Headline:       candidate.Headline,
		CurrentTitle:   candidate.CurrentTitle,
		CurrentCompany: candidate.CurrentCompany,
		Location:       candidate.Location,
		Skills:         skills,
		MatchScore:     candidate.MatchScore,
		Status:         candidate.Status,
		Source:         candidate.Source,
	}
}

func detailView(candidate candidates.Candidate) candidateDetail {
	experience := candidate.WorkExperience
	if experience == nil {
		experience = []candidates.WorkExperience{}
	}
	education := candidate.Education
	if education == nil {
		education = []candidates.Education{}
	}
	return candidateDetail{
		candidateSummary: summaryView(candidate),

		Email:          candidate.Email,
		Phone:          candidate.Phone,
		WorkExperience: experience,
		Education:      education,

		SkillScore:      candidate.SkillScore,
		ExperienceScore: candidate.ExperienceScore,
		CultureScore:    candidate.CultureScore,
		Percentile:      candidate.Percentile,

		CreatedAt: candidate.CreatedAt,
		UpdatedAt: candidate.UpdatedAt,
	}
}

func canViewPII(r *http.Request) bool {
	claims := middleware.Claims(r)
	if claims == nil {
		return false
	}
	return auth.CanViewPII(claims.Role)
}

func writeJSON(w http.ResponseWriter, status int, payload any, contentType string) {
	if contentType == "" {
		contentType = "application/json"
	}
	if !strings.HasPrefix(contentType, "application/") {
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func contentTypeFromRequest(r *http.Request) string {
	if r == nil {
		return "application/json"
	}
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" || strings.HasPrefix(accept, "application/json") {
		return "application/json"
	}
	return "application/json"
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}
