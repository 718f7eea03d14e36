package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentpulse/server/internal/api/pagination"
	"github.com/talentpulse/server/internal/domain/candidates"
)

var _ candidates.Repository = (*CandidateRepository)(nil)

type CandidateRepository struct {
	pool *pgxpool.Pool
}

type candidateRow struct {
	ID             string
	ULID           string
	FullName       string
	Email          *string
	Phone          *string
	Location       *string
	Headline       *string
	CurrentTitle   *string
	CurrentCompany *string

	Skills         []string
	WorkExperience []byte
	Education      []byte

	MatchScore      int
	SkillScore      int
	ExperienceScore int
	CultureScore    int

	Status    string
	Source    string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

const candidateColumns = `c.id, c.ulid, c.full_name, c.email, c.phone, c.location, c.headline,
       c.current_title, c.current_company, c.skills, c.work_experience, c.education,
       c.match_score, c.skill_score, c.experience_score, c.culture_score,
       c.status, c.source, c.created_at, c.updated_at`

func (r *CandidateRepository) List(ctx context.Context, filters candidates.Filters, paginationArgs candidates.Pagination) (candidates.ListResult, error) {
	var cursorScore *int
	var cursorULID *string
	if strings.TrimSpace(paginationArgs.After) != "" {
		cursor, err := pagination.DecodeCandidateCursor(paginationArgs.After)
		if err != nil {
			return candidates.ListResult{}, err
		}
		score := cursor.Score
		cursorScore = &score
		ulid := strings.ToUpper(cursor.ULID)
		cursorULID = &ulid
	}

	limit := paginationArgs.Limit
	if limit <= 0 {
		limit = 50
	}
	limitPlusOne := limit + 1

	rows, err := r.pool.Query(ctx, `
SELECT `+candidateColumns+`
  FROM candidates c
 WHERE ($1 = '' OR c.status = $1)
   AND ($2 = '' OR c.source = $2)
   AND ($3 = '' OR EXISTS (SELECT 1 FROM unnest(c.skills) AS s WHERE lower(s) = $3))
   AND ($4 = '' OR c.full_name ILIKE '%' || $4 || '%' OR c.headline ILIKE '%' || $4 || '%' OR c.current_title ILIKE '%' || $4 || '%' OR c.current_company ILIKE '%' || $4 || '%')
   AND c.match_score >= $5
   AND (
     $6::int IS NULL OR
     c.match_score < $6::int OR
     (c.match_score = $6::int AND c.ulid > $7)
   )
 ORDER BY c.match_score DESC, c.ulid ASC
 LIMIT $8
`,
		filters.Status,
		filters.Source,
		strings.ToLower(filters.Skill),
		filters.Query,
		filters.MinScore,
		cursorScore,
		cursorULID,
		limitPlusOne,
	)
	if err != nil {
		return candidates.ListResult{}, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]candidates.Candidate, 0, limitPlusOne)
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return candidates.ListResult{}, err
		}
		items = append(items, candidate)
	}
	if err := rows.Err(); err != nil {
		return candidates.ListResult{}, fmt.Errorf("iterate candidates: %w", err)
	}

	result := candidates.ListResult{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeCandidateCursor(last.MatchScore, last.ULID)
	}
	result.Candidates = items
	return result, nil
}

func (r *CandidateRepository) GetByULID(ctx context.Context, ulid string) (*candidates.Candidate, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+candidateColumns+`
  FROM candidates c
 WHERE c.ulid = $1
`, strings.ToUpper(ulid))

	candidate, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, candidates.ErrNotFound
		}
		return nil, err
	}
	return &candidate, nil
}

func (r *CandidateRepository) ListScores(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT match_score FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return scores, nil
}

func (r *CandidateRepository) ListSkills(ctx context.Context) ([][]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT skills FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var skills []string
		if err := rows.Scan(&skills); err != nil {
			return nil, fmt.Errorf("scan skills: %w", err)
		}
		out = append(out, skills)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}
	return out, nil
}

func (r *CandidateRepository) ListEducation(ctx context.Context) ([][]candidates.Education, error) {
	rows, err := r.pool.Query(ctx, `SELECT education FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	defer rows.Close()

	var out [][]candidates.Education
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		var entries []candidates.Education
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("decode education: %w", err)
			}
		}
		out = append(out, entries)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate education: %w", err)
	}
	return out, nil
}

func (r *CandidateRepository) ListExperience(ctx context.Context) ([][]candidates.WorkExperience, error) {
	rows, err := r.pool.Query(ctx, `SELECT work_experience FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	defer rows.Close()

	var out [][]candidates.WorkExperience
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		var stints []candidates.WorkExperience
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &stints); err != nil {
				return nil, fmt.Errorf("decode experience: %w", err)
			}
		}
		out = append(out, stints)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experience: %w", err)
	}
	return out, nil
}

func (r *CandidateRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return count, nil
}

func (r *CandidateRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, `SELECT status, COUNT(*) FROM candidates GROUP BY status`)
}

func (r *CandidateRepository) CountBySource(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, `SELECT source, COUNT(*) FROM candidates GROUP BY source`)
}

func (r *CandidateRepository) countGrouped(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count grouped: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan grouped count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grouped counts: %w", err)
	}
	return counts, nil
}

func (r *CandidateRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE created_at >= $1`, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent candidates: %w", err)
	}
	return count, nil
}

func (r *CandidateRepository) AverageMatchScore(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(match_score), 0) FROM candidates`).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average match score: %w", err)
	}
	return avg, nil
}

func scanCandidate(row pgx.Row) (candidates.Candidate, error) {
	var r candidateRow
	if err := row.Scan(
		&r.ID,
		&r.ULID,
		&r.FullName,
		&r.Email,
		&r.Phone,
		&r.Location,
		&r.Headline,
		&r.CurrentTitle,
		&r.CurrentCompany,
		&r.Skills,
		&r.WorkExperience,
		&r.Education,
		&r.MatchScore,
		&r.SkillScore,
		&r.ExperienceScore,
		&r.CultureScore,
		&r.Status,
		&r.Source,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return candidates.Candidate{}, err
		}
		return candidates.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}

	candidate := candidates.Candidate{
		ID:             r.ID,
		ULID:           r.ULID,
		FullName:       r.FullName,
		Email:          derefString(r.Email),
		Phone:          derefString(r.Phone),
		Location:       derefString(r.Location),
		Headline:       derefString(r.Headline),
		CurrentTitle:   derefString(r.CurrentTitle),
		CurrentCompany: derefString(r.CurrentCompany),
		Skills:         r.Skills,

		MatchScore:      r.MatchScore,
		SkillScore:      r.SkillScore,
		ExperienceScore: r.ExperienceScore,
		CultureScore:    r.CultureScore,

		Status: r.Status,
		Source: r.Source,
	}
	if len(r.WorkExperience) > 0 {
		if err := json.Unmarshal(r.WorkExperience, &candidate.WorkExperience); err != nil {
			return candidates.Candidate{}, fmt.Errorf("decode work experience: %w", err)
		}
	}
	if len(r.Education) > 0 {
		if err := json.Unmarshal(r.Education, &candidate.Education); err != nil {
			return candidates.Candidate{}, fmt.Errorf("decode education: %w", err)
		}
	}
	if r.CreatedAt.Valid {
		candidate.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		candidate.UpdatedAt = r.UpdatedAt.Time
	}
	return candidate, nil
}
