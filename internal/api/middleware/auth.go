package middleware

import (
	"context"
	"net/http"

	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "claims"

// JWTAuth validates a token from the Authorization header or session cookie
// and stores the claims in the request context. Requests without a valid
// token get a 401 problem response.
func JWTAuth(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, env)
				return
			}

			token, err := auth.TokenFromRequest(r)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Missing credentials", err, env)
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid or expired token", err, env)
				return
			}

			ctx := contextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth attaches claims when the request carries a valid token
// and otherwise lets it through anonymously. Handlers downstream treat the
// absence of claims as an unprivileged caller, so contact fields stay
// redacted.
func OptionalJWTAuth(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.TokenFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := contextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. Must run after JWTAuth.
func RequireRole(env string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, env)
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient role", nil, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the authenticated claims for the request, or nil.
func Claims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
