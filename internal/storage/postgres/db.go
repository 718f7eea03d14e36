package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Candidates() *CandidateRepository {
	return &CandidateRepository{pool: r.pool}
}

func (r *Repository) Users() *UserRepository {
	return &UserRepository{pool: r.pool}
}
