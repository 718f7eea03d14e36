package candidates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/talentpulse/server/internal/api/pagination"
	"github.com/talentpulse/server/internal/domain/ids"
)

// ProfileCache is a read-through cache fronting candidate fetches.
// Backed by Redis in production; a nil cache disables caching.
type ProfileCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type Service struct {
	repo     Repository
	cache    ProfileCache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func NewService(repo Repository, cache ProfileCache, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "candidates").Logger(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

const profileCachePrefix = "candidate:profile:"

// GetByULID fetches one candidate, consulting the profile cache first and
// attaching the read-time percentile rank.
func (s *Service) GetByULID(ctx context.Context, ulid string) (*Candidate, error) {
	candidate, err := s.getCached(ctx, ulid)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.ListScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	candidate.Percentile = PercentileRank(candidate.MatchScore, scores)
	return candidate, nil
}

func (s *Service) getCached(ctx context.Context, ulid string) (*Candidate, error) {
	key := profileCachePrefix + ulid
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var candidate Candidate
			if err := json.Unmarshal([]byte(raw), &candidate); err == nil {
				return &candidate, nil
			}
		}
	}

	candidate, err := s.repo.GetByULID(ctx, ulid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(candidate); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("ulid", ulid).Msg("profile cache write failed")
			}
		}
	}
	return candidate, nil
}

// ScoreAgainst computes the candidate's fit for a role profile without
// touching stored scores.
func (s *Service) ScoreAgainst(ctx context.Context, ulid string, profile RoleProfile) (*ScoreBreakdown, error) {
	candidate, err := s.getCached(ctx, ulid)
	if err != nil {
		return nil, err
	}
	breakdown := Score(*candidate, profile, time.Now().UTC())
	return &breakdown, nil
}

// Outreach builds the condensed messaging view of a candidate.
func (s *Service) Outreach(ctx context.Context, ulid string) (*OutreachProfile, error) {
	candidate, err := s.getCached(ctx, ulid)
	if err != nil {
		return nil, err
	}
	profile := BuildOutreachProfile(*candidate, time.Now().UTC())
	return &profile, nil
}

func (s *Service) TopSkills(ctx context.Context, limit int) ([]SkillCount, error) {
	skillSets, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return AggregateSkills(skillSets, limit), nil
}

func (s *Service) EducationBreakdown(ctx context.Context) (map[string]int, error) {
	entries, err := s.repo.ListEducation(ctx)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	return AggregateEducation(entries), nil
}

func (s *Service) ExperienceBreakdown(ctx context.Context) (map[string]int, error) {
	stints, err := s.repo.ListExperience(ctx)
	if err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	return AggregateExperience(stints, time.Now().UTC()), nil
}

// KPIs gathers the dashboard counters. The count queries are independent,
// so they run concurrently.
func (s *Service) KPIs(ctx context.Context) (*KPISnapshot, error) {
	var snapshot KPISnapshot
	since := time.Now().UTC().AddDate(0, 0, -30)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		total, err := s.repo.CountAll(groupCtx)
		snapshot.TotalCandidates = total
		return err
	})
	group.Go(func() error {
		byStatus, err := s.repo.CountByStatus(groupCtx)
		snapshot.ByStatus = byStatus
		return err
	})
	group.Go(func() error {
		bySource, err := s.repo.CountBySource(groupCtx)
		snapshot.BySource = bySource
		return err
	})
	group.Go(func() error {
		recent, err := s.repo.CountCreatedSince(groupCtx, since)
		snapshot.AddedLast30Days = recent
		return err
	})
	group.Go(func() error {
		avg, err := s.repo.AverageMatchScore(groupCtx)
		snapshot.AvgMatchScore = avg
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("kpi counters: %w", err)
	}
	return &snapshot, nil
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters validates candidate list query parameters.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{}
	page := Pagination{Limit: 50}

	filters.Status = strings.ToLower(strings.TrimSpace(values.Get("status")))
	if filters.Status != "" && !isAllowedStatus(filters.Status) {
		return filters, page, FilterError{Field: "status", Message: "unsupported pipeline status"}
	}

	filters.Source = strings.ToLower(strings.TrimSpace(values.Get("source")))
	if filters.Source != "" && !isAllowedSource(filters.Source) {
		return filters, page, FilterError{Field: "source", Message: "unsupported sourcing channel"}
	}

	filters.Skill = CanonicalSkill(values.Get("skill"))
	filters.Query = strings.TrimSpace(values.Get("q"))

	if raw := strings.TrimSpace(values.Get("minScore")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return filters, page, FilterError{Field: "minScore", Message: "must be a number"}
		}
		if parsed < 0 || parsed > 100 {
			return filters, page, FilterError{Field: "minScore", Message: "must be between 0 and 100"}
		}
		filters.MinScore = parsed
	}

	limit, err := parseLimit(values)
	if err != nil {
		return filters, page, err
	}
	page.Limit = limit

	after := strings.TrimSpace(values.Get("after"))
	if after != "" {
		if _, err := pagination.DecodeCandidateCursor(after); err != nil {
			return filters, page, FilterError{Field: "after", Message: "invalid cursor"}
		}
	}
	page.After = after

	return filters, page, nil
}

func parseLimit(values url.Values) (int, error) {
	limit := 50
	rawLimit := strings.TrimSpace(values.Get("limit"))
	if rawLimit == "" {
		return limit, nil
	}
	parsed, err := strconv.Atoi(rawLimit)
	if err != nil {
		return 0, FilterError{Field: "limit", Message: "must be a number"}
	}
	if parsed < 1 || parsed > 200 {
		return 0, FilterError{Field: "limit", Message: "must be between 1 and 200"}
	}
	return parsed, nil
}

func isAllowedStatus(value string) bool {
	switch value {
	case "sourced", "screening", "interviewing", "offered", "hired", "rejected":
		return true
	default:
		return false
	}
}

func isAllowedSource(value string) bool {
	switch value {
	case "linkedin", "referral", "job_board", "direct":
		return true
	default:
		return false
	}
}

// ValidateULID rejects malformed public identifiers before they reach the
// repository layer.
func ValidateULID(value string) error {
	return ids.ValidateULID(value)
}
