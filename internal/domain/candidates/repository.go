package candidates

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("candidate not found")

// Candidate is a person record with resume-derived attributes and computed
// match scores. Rows are written by the external ingestion pipeline; this
// service only reads them.
type Candidate struct {
	ID             string
	ULID           string
	FullName       string
	Email          string
	Phone          string
	Location       string
	Headline       string
	CurrentTitle   string
	CurrentCompany string

	Skills         []string
	WorkExperience []WorkExperience
	Education      []Education

	MatchScore      int
	SkillScore      int
	ExperienceScore int
	CultureScore    int
	Percentile      float64

	Status    string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkExperience is one resume stint. Dates are loosely formatted strings
// as extracted from the resume; an empty EndDate means a current role.
type WorkExperience struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Education struct {
	Degree      string `json:"degree"`
	Level       string `json:"level"`
	Institution string `json:"institution"`
}

type Filters struct {
	Status   string
	Source   string
	Skill    string
	Query    string
	MinScore int
}

type Pagination struct {
	Limit int
	After string
}

type ListResult struct {
	Candidates []Candidate
	NextCursor string
}

// KPISnapshot holds the dashboard counters.
type KPISnapshot struct {
	TotalCandidates int64
	ByStatus        map[string]int64
	BySource        map[string]int64
	AddedLast30Days int64
	AvgMatchScore   float64
}

type Repository interface {
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	GetByULID(ctx context.Context, ulid string) (*Candidate, error)

	// ListScores returns every candidate's match score, used for
	// percentile ranking at read time.
	ListScores(ctx context.Context) ([]int, error)

	// Column-scoped scans for the analytics aggregations.
	ListSkills(ctx context.Context) ([][]string, error)
	ListEducation(ctx context.Context) ([][]Education, error)
	ListExperience(ctx context.Context) ([][]WorkExperience, error)

	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountBySource(ctx context.Context) (map[string]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	AverageMatchScore(ctx context.Context) (float64, error)
}
