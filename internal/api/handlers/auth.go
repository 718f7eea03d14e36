package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/talentpulse/server/internal/api/middleware"
	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/auth"
	"github.com/talentpulse/server/internal/domain/users"
	"github.com/talentpulse/server/internal/metrics"
)

type AuthHandler struct {
	Users    *users.Service
	JWT      *auth.JWTManager
	Validate *validator.Validate
	Env      string
}

func NewAuthHandler(usersService *users.Service, jwtManager *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{
		Users:    usersService,
		JWT:      jwtManager,
		Validate: validator.New(),
		Env:      env,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil || h.JWT == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid username or password", err, h.Env)
		case errors.Is(err, users.ErrUserInactive):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Account is inactive", err, h.Env)
		default:
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	token, err := h.JWT.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	expiresAt := time.Now().Add(h.JWT.Expiry())
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Role:      user.Role,
		Username:  user.Username,
		ExpiresAt: expiresAt,
	}, contentTypeFromRequest(r))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h != nil && h.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"}, contentTypeFromRequest(r))
}

type meResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Me returns the authenticated user's identity. Runs behind JWTAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Username: claims.Username, Role: claims.Role}, contentTypeFromRequest(r))
}
