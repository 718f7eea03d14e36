package candidates

import (
	"sort"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// skillAliases folds the spellings that show up in raw resume text into one
// canonical name. Lookups happen after lowercasing and trimming.
var skillAliases = map[string]string{
	"js":                  "javascript",
	"java script":         "javascript",
	"ts":                  "typescript",
	"golang":              "go",
	"go lang":             "go",
	"py":                  "python",
	"python3":             "python",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"node":                "node.js",
	"nodejs":              "node.js",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"k8s":                 "kubernetes",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"google cloud platform": "gcp",
	"c sharp":             "c#",
	"csharp":              "c#",
	"dotnet":              ".net",
	"dot net":             ".net",
	"ml":                  "machine learning",
	"ai":                  "machine learning",
	"tf":                  "tensorflow",
	"scikit learn":        "scikit-learn",
	"sklearn":             "scikit-learn",
	"ci cd":               "ci/cd",
	"cicd":                "ci/cd",
}

// CanonicalSkill normalizes one raw skill string. Any input maps to
// something; unknown skills pass through lowercased.
func CanonicalSkill(raw string) string {
	skill := strings.ToLower(strings.TrimSpace(raw))
	if skill == "" {
		return ""
	}
	if canonical, ok := skillAliases[skill]; ok {
		return canonical
	}
	return skill
}

// CanonicalSkillSet normalizes a candidate's skill list, dropping empties
// and duplicates while preserving first-seen order.
func CanonicalSkillSet(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, value := range raw {
		skill := CanonicalSkill(value)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		result = append(result, skill)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// SkillCount is one row of the skills aggregation.
type SkillCount struct {
	Skill string  `json:"skill"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// AggregateSkills counts candidates per canonical skill and returns the top
// limit entries sorted by count desc, then name asc. Share is the fraction
// of candidates holding the skill, rounded to three decimals.
func AggregateSkills(skillSets [][]string, limit int) []SkillCount {
	if limit <= 0 {
		limit = 20
	}

	counts := make(map[string]int)
	for _, set := range skillSets {
		for _, skill := range CanonicalSkillSet(set) {
			counts[skill]++
		}
	}

	result := make([]SkillCount, 0, len(counts))
	total := len(skillSets)
	for skill, count := range counts {
		share := 0.0
		if total > 0 {
			share = round3(float64(count) / float64(total))
		}
		result = append(result, SkillCount{Skill: skill, Count: count, Share: share})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Skill < result[j].Skill
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Education levels, most to least advanced. Every candidate lands in
// exactly one bucket; unparsable records count as "other".
const (
	LevelDoctorate = "doctorate"
	LevelMasters   = "masters"
	LevelBachelors = "bachelors"
	LevelAssociate = "associate"
	LevelDiploma   = "diploma"
	LevelOther     = "other"
)

var educationLevels = []struct {
	level  string
	stems  []string // substring match on full-word degree names
	tokens []string // exact match on dotted abbreviations after stripping dots
}{
	{LevelDoctorate, []string{"doctor", "dphil"}, []string{"phd", "md", "edd", "dsc"}},
	{LevelMasters, []string{"master", "magister"}, []string{"ms", "msc", "mba", "meng", "ma", "mtech", "mcs"}},
	{LevelBachelors, []string{"bachelor", "baccalaureate"}, []string{"bs", "bsc", "ba", "btech", "beng", "be", "bcs"}},
	{LevelAssociate, []string{"associate"}, []string{"as", "aas", "aa"}},
	{LevelDiploma, []string{"diploma", "certificat"}, nil},
}

// EducationLevel buckets one education entry by keyword matching on its
// degree and level strings. Abbreviations like "M.S." or "BSc" match as
// whole tokens so "Diploma" cannot leak into the masters bucket via "ma".
func EducationLevel(entry Education) string {
	haystack := strings.ToLower(entry.Level + " " + entry.Degree)
	tokens := strings.FieldsFunc(strings.ReplaceAll(haystack, ".", ""), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, bucket := range educationLevels {
		for _, stem := range bucket.stems {
			if strings.Contains(haystack, stem) {
				return bucket.level
			}
		}
		for _, token := range tokens {
			for _, abbrev := range bucket.tokens {
				if token == abbrev {
					return bucket.level
				}
			}
		}
	}
	return LevelOther
}

// HighestEducation returns the most advanced bucket across a candidate's
// education entries, or "other" when there are none.
func HighestEducation(entries []Education) string {
	best := len(educationLevels) // sentinel: other
	for _, entry := range entries {
		level := EducationLevel(entry)
		for i, bucket := range educationLevels {
			if bucket.level == level && i < best {
				best = i
			}
		}
	}
	if best == len(educationLevels) {
		return LevelOther
	}
	return educationLevels[best].level
}

// AggregateEducation counts candidates per highest education bucket.
func AggregateEducation(candidateEducation [][]Education) map[string]int {
	counts := map[string]int{
		LevelDoctorate: 0,
		LevelMasters:   0,
		LevelBachelors: 0,
		LevelAssociate: 0,
		LevelDiploma:   0,
		LevelOther:     0,
	}
	for _, entries := range candidateEducation {
		counts[HighestEducation(entries)]++
	}
	return counts
}

// ExperienceYears sums a candidate's work experience ranges in years.
// Dates are parsed leniently; unparsable stints contribute zero, negative
// ranges are ignored, and open-ended stints run until now.
func ExperienceYears(stints []WorkExperience, now time.Time) float64 {
	var total float64
	for _, stint := range stints {
		start, ok := parseResumeDate(stint.StartDate)
		if !ok {
			continue
		}
		end := now
		if strings.TrimSpace(stint.EndDate) != "" {
			parsed, ok := parseResumeDate(stint.EndDate)
			if !ok {
				continue
			}
			end = parsed
		}
		if end.Before(start) {
			continue
		}
		total += end.Sub(start).Hours() / (24 * 365.25)
	}
	return total
}

func parseResumeDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	// Fast path for the formats ingestion emits most often.
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	parsed, err := dateparser.Parse(nil, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Time, true
}

// Experience bins used by the analytics dashboard.
var ExperienceBins = []string{"0-2", "3-5", "6-10", "10+"}

// ExperienceBin maps total years to a bin label.
func ExperienceBin(years float64) string {
	switch {
	case years < 3:
		return "0-2"
	case years < 6:
		return "3-5"
	case years <= 10:
		return "6-10"
	default:
		return "10+"
	}
}

// AggregateExperience bins each candidate's total years of experience.
func AggregateExperience(candidateStints [][]WorkExperience, now time.Time) map[string]int {
	counts := make(map[string]int, len(ExperienceBins))
	for _, bin := range ExperienceBins {
		counts[bin] = 0
	}
	for _, stints := range candidateStints {
		counts[ExperienceBin(ExperienceYears(stints, now))]++
	}
	return counts
}

func round3(value float64) float64 {
	return float64(int(value*1000+0.5)) / 1000
}
