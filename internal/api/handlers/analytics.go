package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/domain/candidates"
)

type AnalyticsHandler struct {
	Service *candidates.Service
	Env     string
}

func NewAnalyticsHandler(service *candidates.Service, env string) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service, Env: env}
}

type skillsResponse struct {
	Skills []candidates.SkillCount `json:"skills"`
}

type breakdownResponse struct {
	Buckets map[string]int `json:"buckets"`
}

type kpisResponse struct {
	TotalCandidates int64            `json:"total_candidates"`
	ByStatus        map[string]int64 `json:"by_status"`
	BySource        map[string]int64 `json:"by_source"`
	AddedLast30Days int64            `json:"added_last_30_days"`
	AvgMatchScore   float64          `json:"avg_match_score"`
}

func (h *AnalyticsHandler) TopSkills(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 || value > 100 {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request",
				candidates.FilterError{Field: "limit", Message: "must be an integer between 1 and 100"}, h.Env)
			return
		}
		limit = value
	}

	skills, err := h.Service.TopSkills(r.Context(), limit)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	if skills == nil {
		skills = []candidates.SkillCount{}
	}

	writeJSON(w, http.StatusOK, skillsResponse{Skills: skills}, contentTypeFromRequest(r))
}

func (h *AnalyticsHandler) Education(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	buckets, err := h.Service.EducationBreakdown(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, breakdownResponse{Buckets: buckets}, contentTypeFromRequest(r))
}

func (h *AnalyticsHandler) Experience(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	buckets, err := h.Service.ExperienceBreakdown(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, breakdownResponse{Buckets: buckets}, contentTypeFromRequest(r))
}

func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	snapshot, err := h.Service.KPIs(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, kpisResponse{
		TotalCandidates: snapshot.TotalCandidates,
		ByStatus:        snapshot.ByStatus,
		BySource:        snapshot.BySource,
		AddedLast30Days: snapshot.AddedLast30Days,
		AvgMatchScore:   snapshot.AvgMatchScore,
	}, contentTypeFromRequest(r))
}
