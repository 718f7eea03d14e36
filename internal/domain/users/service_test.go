package users

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users           map[string]*User
	updateLoginErr  error
	lastLoginCalled bool
	created         []User
	createErr       error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*User)}
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ string) error {
	s.lastLoginCalled = true
	return s.updateLoginErr
}

func (s *stubUserRepo) Create(_ context.Context, user User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, user)
	return nil
}

func addUser(t *testing.T, repo *stubUserRepo, username, password string, active bool) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	repo.users[username] = &User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: hash,
		Role:         "recruiter",
		IsActive:     active,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newStubUserRepo()
	addUser(t, repo, "jane", "correct horse battery staple", true)
	svc := NewService(repo, zerolog.Nop())

	user, err := svc.Authenticate(context.Background(), "jane", "correct horse battery staple")
	require.NoError(t, err)
	require.Equal(t, "jane", user.Username)
	require.True(t, repo.lastLoginCalled)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	addUser(t, repo, "jane", "right-password", true)
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Authenticate(context.Background(), "jane", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUserSameError(t *testing.T) {
	svc := NewService(newStubUserRepo(), zerolog.Nop())

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newStubUserRepo()
	addUser(t, repo, "jane", "password123456", false)
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Authenticate(context.Background(), "jane", "password123456")
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthenticateSucceedsWhenLastLoginWriteFails(t *testing.T) {
	repo := newStubUserRepo()
	addUser(t, repo, "jane", "password123456", true)
	repo.updateLoginErr = errors.New("deadlock detected")
	svc := NewService(repo, zerolog.Nop())

	user, err := svc.Authenticate(context.Background(), "jane", "password123456")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestEnsureAdminCreatesAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, zerolog.Nop())

	err := svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "bootstrap-password")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Equal(t, "admin", repo.created[0].Role)
	require.True(t, repo.created[0].IsActive)
	require.NotEqual(t, "bootstrap-password", repo.created[0].PasswordHash)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = ErrUserExists
	svc := NewService(repo, zerolog.Nop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "pw"))
}

func TestEnsureAdminPropagatesRepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewService(repo, zerolog.Nop())

	require.Error(t, svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "pw"))
}

func TestHashPasswordVerifiable(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-passphrase", hash)

	again, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "bcrypt salts every hash")
}
