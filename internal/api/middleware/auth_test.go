package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentpulse/server/internal/auth"
)

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-at-least-32-chars-long!", time.Hour, "talentpulse")
}

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthAllowsValidHeaderToken(t *testing.T) {
	manager := testJWTManager()
	token, err := manager.Generate("user-1", "jane", auth.RoleRecruiter)
	require.NoError(t, err)

	var called bool
	var claims *auth.Claims
	handler := JWTAuth(manager, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims = Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.True(t, called)
	require.NotNil(t, claims)
	require.Equal(t, "jane", claims.Username)
	require.Equal(t, auth.RoleRecruiter, claims.Role)
}

func TestJWTAuthAllowsSessionCookie(t *testing.T) {
	manager := testJWTManager()
	token, err := manager.Generate("user-1", "jane", auth.RoleViewer)
	require.NoError(t, err)

	var called bool
	handler := JWTAuth(manager, "test")(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.True(t, called)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	var called bool
	handler := JWTAuth(testJWTManager(), "test")(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestJWTAuthRejectsInvalidToken(t *testing.T) {
	var called bool
	handler := JWTAuth(testJWTManager(), "test")(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestOptionalJWTAuthAttachesClaimsWhenPresent(t *testing.T) {
	manager := testJWTManager()
	token, err := manager.Generate("user-1", "jane", auth.RoleRecruiter)
	require.NoError(t, err)

	var claims *auth.Claims
	handler := OptionalJWTAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.NotNil(t, claims)
	require.Equal(t, auth.RoleRecruiter, claims.Role)
}

func TestOptionalJWTAuthPassesAnonymousRequests(t *testing.T) {
	var claims *auth.Claims
	var called bool
	handler := OptionalJWTAuth(testJWTManager())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims = Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.True(t, called)
	require.Nil(t, claims)
}

func TestOptionalJWTAuthIgnoresInvalidToken(t *testing.T) {
	var claims *auth.Claims
	var called bool
	handler := OptionalJWTAuth(testJWTManager())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims = Claims(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.True(t, called)
	require.Nil(t, claims)
}

func TestRequireRole(t *testing.T) {
	manager := testJWTManager()

	tests := []struct {
		name     string
		role     string
		allowed  []string
		expected int
	}{
		{"admin allowed", auth.RoleAdmin, []string{auth.RoleAdmin}, http.StatusOK},
		{"recruiter allowed among several", auth.RoleRecruiter, []string{auth.RoleRecruiter, auth.RoleAdmin}, http.StatusOK},
		{"viewer forbidden", auth.RoleViewer, []string{auth.RoleRecruiter, auth.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := manager.Generate("user-1", "jane", tt.role)
			require.NoError(t, err)

			var called bool
			handler := JWTAuth(manager, "test")(RequireRole("test", tt.allowed...)(okHandler(t, &called)))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			require.Equal(t, tt.expected, res.Code)
			require.Equal(t, tt.expected == http.StatusOK, called)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	var called bool
	handler := RequireRole("test", auth.RoleAdmin)(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestClaimsNilRequest(t *testing.T) {
	require.Nil(t, Claims(nil))
	require.Nil(t, Claims(httptest.NewRequest(http.MethodGet, "/", nil)))
}
