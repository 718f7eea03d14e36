package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentpulse/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT u.id, u.username, u.email, u.password_hash, u.role, u.is_active, u.last_login_at, u.created_at
  FROM users u
 WHERE u.username = $1
`, username)

	var user users.User
	var lastLogin pgtype.Timestamptz
	var createdAt pgtype.Timestamptz
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&lastLogin,
		&createdAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if lastLogin.Valid {
		value := lastLogin.Time
		user.LastLoginAt = &value
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Create inserts a user. A duplicate username is reported as ErrUserExists
// so bootstrap can be re-run safely.
func (r *UserRepository) Create(ctx context.Context, user users.User) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (username, email, password_hash, role, is_active)
VALUES ($1, $2, $3, $4, $5)
`, user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return users.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
