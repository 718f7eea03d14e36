package candidates

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/talentpulse/server/internal/redact"
)

// OutreachProfile is the condensed view of a candidate used for messaging.
// Contact fields are always redacted; free text is stripped of any HTML
// that survived ingestion.
type OutreachProfile struct {
	ULID              string   `json:"ulid"`
	FullName          string   `json:"full_name"`
	Headline          string   `json:"headline"`
	KeySkills         []string `json:"key_skills"`
	ExperienceSummary string   `json:"experience_summary"`
	EducationLine     string   `json:"education_line,omitempty"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Location          string   `json:"location,omitempty"`
}

const maxKeySkills = 5

// BuildOutreachProfile condenses a candidate into an outreach view.
func BuildOutreachProfile(candidate Candidate, now time.Time) OutreachProfile {
	profile := OutreachProfile{
		ULID:     candidate.ULID,
		FullName: redact.Text(candidate.FullName),
		Headline: outreachHeadline(candidate),
		Email:    redact.Email(candidate.Email),
		Phone:    redact.Phone(candidate.Phone),
		Location: redact.Location(candidate.Location),
	}

	skills := CanonicalSkillSet(candidate.Skills)
	if len(skills) > maxKeySkills {
		skills = skills[:maxKeySkills]
	}
	profile.KeySkills = skills

	profile.ExperienceSummary = experienceSummary(candidate.WorkExperience, now)
	profile.EducationLine = educationLine(candidate.Education)
	return profile
}

func outreachHeadline(candidate Candidate) string {
	if headline := redact.Text(candidate.Headline); headline != "" {
		return headline
	}
	title := redact.Text(candidate.CurrentTitle)
	company := redact.Text(candidate.CurrentCompany)
	if title == "" && len(candidate.WorkExperience) > 0 {
		title = redact.Text(candidate.WorkExperience[0].Title)
		company = redact.Text(candidate.WorkExperience[0].Company)
	}
	if title == "" {
		return ""
	}
	if company == "" {
		return title
	}
	return title + " @ " + company
}

func experienceSummary(stints []WorkExperience, now time.Time) string {
	if len(stints) == 0 {
		return "No work experience on record"
	}
	years := int(math.Round(ExperienceYears(stints, now)))
	latest := latestStint(stints, now)

	summary := fmt.Sprintf("%s across %s", pluralYears(years), pluralRoles(len(stints)))
	if title := redact.Text(latest.Title); title != "" {
		summary += ", most recently " + title
		if company := redact.Text(latest.Company); company != "" {
			summary += " at " + company
		}
	}
	return summary
}

// latestStint prefers an open-ended stint, then the one with the most
// recent start date.
func latestStint(stints []WorkExperience, now time.Time) WorkExperience {
	best := stints[0]
	bestStart := time.Time{}
	for _, stint := range stints {
		if strings.TrimSpace(stint.EndDate) == "" {
			return stint
		}
		if start, ok := parseResumeDate(stint.StartDate); ok && start.After(bestStart) {
			bestStart = start
			best = stint
		}
	}
	return best
}

func educationLine(entries []Education) string {
	if len(entries) == 0 {
		return ""
	}
	highest := HighestEducation(entries)
	for _, entry := range entries {
		if EducationLevel(entry) != highest {
			continue
		}
		degree := redact.Text(entry.Degree)
		institution := redact.Text(entry.Institution)
		switch {
		case degree != "" && institution != "":
			return degree + ", " + institution
		case degree != "":
			return degree
		case institution != "":
			return institution
		}
	}
	return ""
}

func pluralYears(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}

func pluralRoles(count int) string {
	if count == 1 {
		return "1 role"
	}
	return fmt.Sprintf("%d roles", count)
}
