package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/talentpulse/server/internal/api/middleware"
	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/domain/candidates"
	"github.com/talentpulse/server/internal/email"
	"github.com/talentpulse/server/internal/metrics"
)

type OutreachHandler struct {
	Service  *candidates.Service
	Email    *email.Service
	Validate *validator.Validate
	Company  string
	Env      string
}

func NewOutreachHandler(service *candidates.Service, emailService *email.Service, company, env string) *OutreachHandler {
	return &OutreachHandler{
		Service:  service,
		Email:    emailService,
		Validate: validator.New(),
		Company:  company,
		Env:      env,
	}
}

// Get returns the outreach profile: the candidate transformed into the
// compact, PII-redacted shape recruiters paste into sourcing tools.
func (h *OutreachHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	ulidValue := strings.TrimSpace(pathParam(r, "id"))
	if err := candidates.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	profile, err := h.Service.Outreach(r.Context(), ulidValue)
	if err != nil {
		if errors.Is(err, candidates.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Candidate not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, profile, contentTypeFromRequest(r))
}

type sendEmailRequest struct {
	RoleTitle string `json:"role_title" validate:"required,min=2,max=120"`
}

type sendEmailResponse struct {
	Status string `json:"status"`
}

// SendEmail sends an outreach email to the candidate's real address. The
// address never leaves the server; the response carries no contact fields.
func (h *OutreachHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil || h.Email == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	ulidValue := strings.TrimSpace(pathParam(r, "id"))
	if err := candidates.ValidateULID(ulidValue); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
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

	if strings.TrimSpace(candidate.Email) == "" {
		metrics.OutreachEmailsTotal.WithLabelValues("skipped").Inc()
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidationError, "Candidate has no email address", nil, h.Env)
		return
	}

	profile, err := h.Service.Outreach(r.Context(), ulidValue)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	recruiter := "The recruiting team"
	if claims := middleware.Claims(r); claims != nil && claims.Username != "" {
		recruiter = claims.Username
	}

	data := email.OutreachData{
		CandidateName:     profile.FullName,
		Headline:          profile.Headline,
		KeySkills:         profile.KeySkills,
		ExperienceSummary: profile.ExperienceSummary,
		RecruiterName:     recruiter,
		CompanyName:       h.Company,
		RoleTitle:         req.RoleTitle,
	}
	if err := h.Email.SendOutreach(r.Context(), candidate.Email, data); err != nil {
		metrics.OutreachEmailsTotal.WithLabelValues("failed").Inc()
		problem.Write(w, r, http.StatusBadGateway, problem.TypeServerError, "Failed to send email", err, h.Env)
		return
	}

	metrics.OutreachEmailsTotal.WithLabelValues("sent").Inc()
	writeJSON(w, http.StatusAccepted, sendEmailResponse{Status: "sent"}, contentTypeFromRequest(r))
}
