// Package users manages recruiter accounts and credential checks for
// sign-in. Account provisioning happens out of band (admin bootstrap); the
// service only authenticates and records logins.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

// User is a recruiter account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	Create(ctx context.Context, user User) error
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Authenticate verifies username/password credentials. It returns
// ErrInvalidCredentials for both unknown users and wrong passwords so the
// response cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to record last login")
	}

	return user, nil
}

// EnsureAdmin creates an active admin account if the username is not
// already taken. Used at startup when bootstrap credentials are configured.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	err = s.repo.Create(ctx, User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	})
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
