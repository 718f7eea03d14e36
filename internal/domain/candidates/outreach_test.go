package candidates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildOutreachProfileRedactsContactFields(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	candidate := Candidate{
		ULID:     "01JMXW5S8GQZJ4B2N6P8R0T2V4",
		FullName: "Jane Doe",
		Email:    "jane.doe@example.com",
		Phone:    "+1 (555) 867-5309",
		Location: "123 Main St, Springfield, IL",
		Headline: "Staff Engineer",
	}

	profile := BuildOutreachProfile(candidate, now)
	require.Equal(t, "j***@example.com", profile.Email)
	require.Equal(t, "***-5309", profile.Phone)
	require.Equal(t, "IL", profile.Location)
	require.Equal(t, "Jane Doe", profile.FullName)
}

func TestBuildOutreachProfileStripsHTML(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	candidate := Candidate{
		FullName: "Jane Doe",
		Headline: `Engineer <script>alert("x")</script> at <b>Acme</b>`,
	}

	profile := BuildOutreachProfile(candidate, now)
	require.NotContains(t, profile.Headline, "<script>")
	require.NotContains(t, profile.Headline, "<b>")
	require.Contains(t, profile.Headline, "Engineer")
}

func TestOutreachHeadlineFallsBackToCurrentRole(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		expected  string
	}{
		{
			"headline wins",
			Candidate{Headline: "Platform Lead", CurrentTitle: "Engineer"},
			"Platform Lead",
		},
		{
			"title and company",
			Candidate{CurrentTitle: "Engineer", CurrentCompany: "Acme"},
			"Engineer @ Acme",
		},
		{
			"title only",
			Candidate{CurrentTitle: "Engineer"},
			"Engineer",
		},
		{
			"falls back to first stint",
			Candidate{WorkExperience: []WorkExperience{{Title: "Analyst", Company: "Initech"}}},
			"Analyst @ Initech",
		},
		{
			"nothing available",
			Candidate{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, outreachHeadline(tt.candidate))
		})
	}
}

func TestBuildOutreachProfileCapsKeySkills(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	candidate := Candidate{
		Skills: []string{"go", "python", "rust", "java", "scala", "kotlin", "elixir"},
	}

	profile := BuildOutreachProfile(candidate, now)
	require.Len(t, profile.KeySkills, maxKeySkills)
	require.Equal(t, "go", profile.KeySkills[0])
}

func TestExperienceSummary(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no experience", func(t *testing.T) {
		require.Equal(t, "No work experience on record", experienceSummary(nil, now))
	})

	t.Run("single role", func(t *testing.T) {
		stints := []WorkExperience{
			{Title: "Engineer", Company: "Acme", StartDate: "2025-06-01"},
		}
		summary := experienceSummary(stints, now)
		require.Equal(t, "1 year across 1 role, most recently Engineer at Acme", summary)
	})

	t.Run("multiple roles", func(t *testing.T) {
		stints := []WorkExperience{
			{Title: "Junior Dev", Company: "Initech", StartDate: "2019-01-01", EndDate: "2021-01-01"},
			{Title: "Senior Dev", Company: "Acme", StartDate: "2021-01-01", EndDate: "2024-01-01"},
		}
		summary := experienceSummary(stints, now)
		require.Equal(t, "5 years across 2 roles, most recently Senior Dev at Acme", summary)
	})
}

func TestLatestStintPrefersOpenEnded(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	stints := []WorkExperience{
		{Title: "Old", StartDate: "2024-01-01", EndDate: "2025-01-01"},
		{Title: "Current", StartDate: "2020-01-01", EndDate: ""},
	}
	require.Equal(t, "Current", latestStint(stints, now).Title)
}

func TestLatestStintMostRecentStart(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	stints := []WorkExperience{
		{Title: "First", StartDate: "2018-01-01", EndDate: "2020-01-01"},
		{Title: "Second", StartDate: "2020-01-01", EndDate: "2023-01-01"},
	}
	require.Equal(t, "Second", latestStint(stints, now).Title)
}

func TestEducationLine(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Education
		expected string
	}{
		{
			"degree and institution",
			[]Education{{Degree: "MSc Computer Science", Institution: "MIT"}},
			"MSc Computer Science, MIT",
		},
		{
			"picks highest bucket",
			[]Education{
				{Degree: "BSc Math", Institution: "State U"},
				{Degree: "PhD Physics", Institution: "Caltech"},
			},
			"PhD Physics, Caltech",
		},
		{
			"degree only",
			[]Education{{Degree: "MBA"}},
			"MBA",
		},
		{
			"none",
			nil,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, educationLine(tt.entries))
		})
	}
}
