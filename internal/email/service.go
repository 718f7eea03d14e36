// Package email renders and sends outreach emails through the Resend API.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/talentpulse/server/internal/config"
)

type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

// OutreachData holds the fields rendered into the outreach email template.
// Contact details are redacted upstream before they reach the template.
type OutreachData struct {
	CandidateName     string
	Headline          string
	KeySkills         []string
	ExperienceSummary string
	RecruiterName     string
	CompanyName       string
	RoleTitle         string
	CurrentYear       int
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return nil, fmt.Errorf("email enabled but RESEND_API_KEY is empty")
		}
	}

	pattern := filepath.Join(cfg.TemplatesDir, "*.html")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	s := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		s.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return s, nil
}

// SendOutreach sends an outreach email to a candidate. When the service is
// disabled it logs the intent and reports success so development environments
// work without an API key.
func (s *Service) SendOutreach(ctx context.Context, to string, data OutreachData) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("candidate", data.CandidateName).
			Str("role", data.RoleTitle).
			Msg("email service disabled, skipping outreach email")
		return nil
	}

	if data.CurrentYear == 0 {
		data.CurrentYear = time.Now().Year()
	}
	htmlBody, err := s.renderTemplate("outreach.html", data)
	if err != nil {
		return fmt.Errorf("render outreach template: %w", err)
	}

	subject := fmt.Sprintf("An opportunity at %s", data.CompanyName)
	if data.RoleTitle != "" {
		subject = fmt.Sprintf("%s role at %s", data.RoleTitle, data.CompanyName)
	}

	if err := s.sendViaResend(ctx, to, subject, htmlBody); err != nil {
		return fmt.Errorf("send outreach email: %w", err)
	}

	s.logger.Info().
		Str("to", to).
		Str("candidate", data.CandidateName).
		Msg("outreach email sent")
	return nil
}

// validateEmailAddress checks format and rejects header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}

func (s *Service) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
