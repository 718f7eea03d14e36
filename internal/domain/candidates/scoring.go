package candidates

import (
	"math"
	"time"
)

// RoleProfile describes the target role a candidate is scored against.
type RoleProfile struct {
	RequiredSkills     []string `json:"required_skills" validate:"required,min=1,dive,min=1"`
	MinYearsExperience int      `json:"min_years_experience" validate:"gte=0,lte=50"`
	PreferredEducation string   `json:"preferred_education" validate:"omitempty,oneof=doctorate masters bachelors associate diploma other"`
}

// ScoreBreakdown holds the weighted sub-scores behind a match score.
type ScoreBreakdown struct {
	MatchScore      int `json:"match_score"`
	SkillScore      int `json:"skill_score"`
	ExperienceScore int `json:"experience_score"`
	CultureScore    int `json:"culture_score"`
}

// Sub-score weights. Skill fit dominates because it is the strongest
// predictor recruiters act on.
const (
	skillWeight      = 0.5
	experienceWeight = 0.3
	cultureWeight    = 0.2
)

// Score computes a candidate's fit against a role profile. Sub-scores are
// bucketed 0-100 and combined into a weighted match score. Deterministic
// for a fixed "now".
func Score(candidate Candidate, profile RoleProfile, now time.Time) ScoreBreakdown {
	skill := skillFit(candidate.Skills, profile.RequiredSkills)
	experience := experienceFit(ExperienceYears(candidate.WorkExperience, now), profile.MinYearsExperience)
	culture := cultureFit(candidate)

	match := int(math.Round(
		float64(skill)*skillWeight +
			float64(experience)*experienceWeight +
			float64(culture)*cultureWeight))

	return ScoreBreakdown{
		MatchScore:      match,
		SkillScore:      skill,
		ExperienceScore: experience,
		CultureScore:    culture,
	}
}

// skillFit buckets the overlap ratio between the candidate's canonical
// skills and the role's required skills.
func skillFit(candidateSkills, requiredSkills []string) int {
	required := CanonicalSkillSet(requiredSkills)
	if len(required) == 0 {
		return 50
	}
	have := make(map[string]struct{})
	for _, skill := range CanonicalSkillSet(candidateSkills) {
		have[skill] = struct{}{}
	}
	matched := 0
	for _, skill := range required {
		if _, ok := have[skill]; ok {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(required))
	switch {
	case ratio >= 1:
		return 100
	case ratio >= 0.75:
		return 85
	case ratio >= 0.5:
		return 70
	case ratio >= 0.25:
		return 45
	case ratio > 0:
		return 25
	default:
		return 10
	}
}

func experienceFit(years float64, minYears int) int {
	if minYears <= 0 {
		return 80
	}
	required := float64(minYears)
	switch {
	case years >= required*1.5:
		return 100
	case years >= required:
		return 80
	case years >= required*0.6:
		return 60
	default:
		return 30
	}
}

// cultureFit is a coarse heuristic from pipeline signals: how far the
// candidate has already progressed and how warm the sourcing channel is.
func cultureFit(candidate Candidate) int {
	score := 50
	switch candidate.Status {
	case "interviewing", "offered", "hired":
		score += 30
	case "screening":
		score += 15
	case "rejected":
		score -= 20
	}
	switch candidate.Source {
	case "referral":
		score += 20
	case "direct":
		score += 10
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// PercentileRank returns the share of candidates with a strictly lower
// match score, as a percentage with one decimal. An empty set yields 0.
func PercentileRank(score int, all []int) float64 {
	if len(all) == 0 {
		return 0
	}
	below := 0
	for _, other := range all {
		if other < score {
			below++
		}
	}
	return math.Round(float64(below)/float64(len(all))*1000) / 10
}
