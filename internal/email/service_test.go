package email

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/talentpulse/server/internal/config"
)

const testTemplate = `<html><body>
<p>Hi {{.CandidateName}},</p>
<p>{{.RecruiterName}} at {{.CompanyName}} thinks you would be a great fit for the {{.RoleTitle}} role.</p>
{{range .KeySkills}}<span>{{.}}</span>{{end}}
</body></html>`

func writeTestTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "outreach.html"), []byte(testTemplate), 0o644)
	require.NoError(t, err)
	return dir
}

func disabledService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(config.EmailConfig{
		Enabled:      false,
		From:         "TalentPulse <outreach@talentpulse.dev>",
		CompanyName:  "TalentPulse",
		TemplatesDir: writeTestTemplates(t),
	}, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestNewServiceDisabledNeedsNoAPIKey(t *testing.T) {
	svc := disabledService(t)
	require.NotNil(t, svc)
	require.Nil(t, svc.resendClient)
}

func TestNewServiceEnabledRequiresAPIKey(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		Enabled:      true,
		From:         "outreach@talentpulse.dev",
		TemplatesDir: writeTestTemplates(t),
	}, zerolog.Nop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "RESEND_API_KEY")
}

func TestNewServiceEnabledRequiresValidSender(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		Enabled:      true,
		ResendAPIKey: "re_test_key",
		From:         "not an address",
		TemplatesDir: writeTestTemplates(t),
	}, zerolog.Nop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "sender")
}

func TestNewServiceMissingTemplates(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		TemplatesDir: t.TempDir(),
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestSendOutreachDisabledReportsSuccess(t *testing.T) {
	svc := disabledService(t)

	err := svc.SendOutreach(context.Background(), "jane@example.com", OutreachData{
		CandidateName: "Jane Doe",
		RoleTitle:     "Staff Engineer",
	})
	require.NoError(t, err)
}

func TestSendOutreachRejectsBadRecipient(t *testing.T) {
	svc := disabledService(t)

	err := svc.SendOutreach(context.Background(), "not-an-email", OutreachData{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "recipient")
}

func TestRenderTemplate(t *testing.T) {
	svc := disabledService(t)

	body, err := svc.renderTemplate("outreach.html", OutreachData{
		CandidateName: "Jane Doe",
		RecruiterName: "Sam",
		CompanyName:   "Acme",
		RoleTitle:     "Staff Engineer",
		KeySkills:     []string{"go", "postgresql"},
	})
	require.NoError(t, err)
	require.Contains(t, body, "Hi Jane Doe,")
	require.Contains(t, body, "Sam at Acme")
	require.Contains(t, body, "<span>go</span>")
}

func TestRenderTemplateEscapesHTML(t *testing.T) {
	svc := disabledService(t)

	body, err := svc.renderTemplate("outreach.html", OutreachData{
		CandidateName: `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	require.NotContains(t, body, "<script>alert")
}

func TestValidateEmailAddress(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "jane@example.com", false},
		{"with display name", "Jane Doe <jane@example.com>", false},
		{"missing domain", "jane@", true},
		{"empty", "", true},
		{"header injection", "jane@example.com\r\nBcc: everyone@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmailAddress(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
