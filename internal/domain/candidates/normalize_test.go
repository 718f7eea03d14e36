package candidates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanonicalSkill(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"alias golang", "Golang", "go"},
		{"alias js", "JS", "javascript"},
		{"alias k8s", "k8s", "kubernetes"},
		{"alias with spaces", "  Amazon Web Services  ", "aws"},
		{"unknown passes through lowercased", "Terraform", "terraform"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CanonicalSkill(tt.input))
		})
	}
}

func TestCanonicalSkillSetDedupes(t *testing.T) {
	result := CanonicalSkillSet([]string{"Golang", "go", "JS", "javascript", "", "python3"})
	require.Equal(t, []string{"go", "javascript", "python"}, result)
}

func TestCanonicalSkillSetEmpty(t *testing.T) {
	require.Nil(t, CanonicalSkillSet(nil))
	require.Nil(t, CanonicalSkillSet([]string{"", "  "}))
}

func TestAggregateSkills(t *testing.T) {
	sets := [][]string{
		{"Go", "Postgres", "Kubernetes"},
		{"golang", "psql"},
		{"Go", "React"},
		{"python"},
	}

	result := AggregateSkills(sets, 3)
	require.Len(t, result, 3)
	require.Equal(t, "go", result[0].Skill)
	require.Equal(t, 3, result[0].Count)
	require.Equal(t, 0.75, result[0].Share)
	require.Equal(t, "postgresql", result[1].Skill)
	require.Equal(t, 2, result[1].Count)
}

func TestAggregateSkillsTieBreaksByName(t *testing.T) {
	sets := [][]string{{"zig", "ada"}}
	result := AggregateSkills(sets, 10)
	require.Len(t, result, 2)
	require.Equal(t, "ada", result[0].Skill)
	require.Equal(t, "zig", result[1].Skill)
}

func TestAggregateSkillsZeroLimitDefaults(t *testing.T) {
	sets := make([][]string, 0)
	for _, skill := range []string{"a", "b", "c"} {
		sets = append(sets, []string{skill})
	}
	require.Len(t, AggregateSkills(sets, 0), 3)
}

func TestEducationLevel(t *testing.T) {
	tests := []struct {
		name     string
		entry    Education
		expected string
	}{
		{"phd abbrev", Education{Degree: "Ph.D. in Computer Science"}, LevelDoctorate},
		{"doctorate word", Education{Level: "Doctorate"}, LevelDoctorate},
		{"masters word", Education{Degree: "Master of Science"}, LevelMasters},
		{"msc abbrev", Education{Degree: "M.Sc. Physics"}, LevelMasters},
		{"mba", Education{Degree: "MBA"}, LevelMasters},
		{"bachelors word", Education{Degree: "Bachelor of Arts"}, LevelBachelors},
		{"bsc abbrev", Education{Degree: "BSc Computer Science"}, LevelBachelors},
		{"associate", Education{Degree: "Associate of Applied Science"}, LevelAssociate},
		{"diploma does not match ma token", Education{Degree: "Diploma"}, LevelDiploma},
		{"certificate stem", Education{Degree: "Certificate in Accounting"}, LevelDiploma},
		{"unparsable", Education{Degree: "Self taught"}, LevelOther},
		{"empty", Education{}, LevelOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, EducationLevel(tt.entry))
		})
	}
}

func TestHighestEducation(t *testing.T) {
	entries := []Education{
		{Degree: "BSc Computer Science"},
		{Degree: "Master of Engineering"},
		{Degree: "High school diploma"},
	}
	require.Equal(t, LevelMasters, HighestEducation(entries))
	require.Equal(t, LevelOther, HighestEducation(nil))
}

func TestAggregateEducationIncludesEmptyBuckets(t *testing.T) {
	counts := AggregateEducation([][]Education{
		{{Degree: "PhD"}},
		{{Degree: "BSc"}},
		nil,
	})
	require.Equal(t, 1, counts[LevelDoctorate])
	require.Equal(t, 1, counts[LevelBachelors])
	require.Equal(t, 1, counts[LevelOther])
	require.Equal(t, 0, counts[LevelMasters])
	require.Len(t, counts, 6)
}

func TestExperienceYears(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		stints []WorkExperience
		min    float64
		max    float64
	}{
		{
			"closed range",
			[]WorkExperience{{StartDate: "2020-01-01", EndDate: "2022-01-01"}},
			1.9, 2.1,
		},
		{
			"open ended runs to now",
			[]WorkExperience{{StartDate: "2024-06-01"}},
			1.9, 2.1,
		},
		{
			"year month format",
			[]WorkExperience{{StartDate: "2020-01", EndDate: "2021-01"}},
			0.9, 1.1,
		},
		{
			"sums multiple stints",
			[]WorkExperience{
				{StartDate: "2018", EndDate: "2020"},
				{StartDate: "2021", EndDate: "2022"},
			},
			2.9, 3.1,
		},
		{
			"negative range ignored",
			[]WorkExperience{{StartDate: "2022-01-01", EndDate: "2020-01-01"}},
			0, 0,
		},
		{
			"unparsable start ignored",
			[]WorkExperience{{StartDate: "whenever", EndDate: "2022-01-01"}},
			0, 0,
		},
		{
			"empty",
			nil,
			0, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			years := ExperienceYears(tt.stints, now)
			require.GreaterOrEqual(t, years, tt.min)
			require.LessOrEqual(t, years, tt.max)
		})
	}
}

func TestParseResumeDateNaturalLanguage(t *testing.T) {
	parsed, ok := parseResumeDate("January 2020")
	require.True(t, ok)
	require.Equal(t, 2020, parsed.Year())
	require.Equal(t, time.January, parsed.Month())
}

func TestExperienceBin(t *testing.T) {
	tests := []struct {
		years    float64
		expected string
	}{
		{0, "0-2"},
		{2.9, "0-2"},
		{3, "3-5"},
		{5.9, "3-5"},
		{6, "6-10"},
		{10, "6-10"},
		{10.1, "10+"},
		{25, "10+"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, ExperienceBin(tt.years), "years=%v", tt.years)
	}
}

func TestAggregateExperienceIncludesEmptyBins(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	counts := AggregateExperience([][]WorkExperience{
		{{StartDate: "2022-01-01", EndDate: "2023-01-01"}},
		nil,
	}, now)
	require.Equal(t, 2, counts["0-2"])
	require.Equal(t, 0, counts["10+"])
	require.Len(t, counts, len(ExperienceBins))
}
