// Package api assembles the HTTP routes and middleware chain.
package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/talentpulse/server/internal/api/handlers"
	"github.com/talentpulse/server/internal/api/middleware"
	"github.com/talentpulse/server/internal/auth"
	"github.com/talentpulse/server/internal/config"
	"github.com/talentpulse/server/internal/domain/candidates"
	"github.com/talentpulse/server/internal/domain/users"
	"github.com/talentpulse/server/internal/email"
	"github.com/talentpulse/server/internal/metrics"
	"github.com/talentpulse/server/internal/ratelimit"
	"github.com/talentpulse/server/internal/storage/postgres"
	"github.com/talentpulse/server/internal/storage/redis"
)

// Dependencies carries the externally managed resources the router wires
// into handlers. Cache and Email may be nil; the routes degrade gracefully.
type Dependencies struct {
	Pool    *pgxpool.Pool
	Cache   *redis.Client
	Limiter ratelimit.Limiter
	Email   *email.Service

	Version   string
	GitCommit string
	BuildDate string
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) (http.Handler, error) {
	repo, err := postgres.NewRepository(deps.Pool)
	if err != nil {
		return nil, fmt.Errorf("repository init: %w", err)
	}

	var cache candidates.ProfileCache
	if deps.Cache != nil {
		cache = metrics.InstrumentCache(deps.Cache)
	}
	candidatesService := candidates.NewService(repo.Candidates(), cache, 5*time.Minute, logger)
	usersService := users.NewService(repo.Users(), logger)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	candidatesHandler := handlers.NewCandidatesHandler(candidatesService, cfg.Environment)
	analyticsHandler := handlers.NewAnalyticsHandler(candidatesService, cfg.Environment)
	outreachHandler := handlers.NewOutreachHandler(candidatesService, deps.Email, cfg.Email.CompanyName, cfg.Environment)
	authHandler := handlers.NewAuthHandler(usersService, jwtManager, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(deps.Pool, deps.Cache, deps.Version, deps.GitCommit)

	authRequired := middleware.JWTAuth(jwtManager, cfg.Environment)
	authOptional := middleware.OptionalJWTAuth(jwtManager)
	recruiterOnly := middleware.RequireRole(cfg.Environment, auth.RoleRecruiter, auth.RoleAdmin)
	loginLimit := middleware.RateLimit(middleware.TierLogin, cfg.RateLimit, deps.Limiter, cfg.Environment, logger)
	publicLimit := middleware.RateLimit(middleware.TierPublic, cfg.RateLimit, deps.Limiter, cfg.Environment, logger)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", healthChecker.Readyz())
	mux.Handle("/api/v1/health", healthChecker.Health())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/api/v1/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))

	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Logout),
	}))
	mux.Handle("/api/v1/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: authRequired(http.HandlerFunc(authHandler.Me)),
	}))

	mux.Handle("/api/v1/candidates", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(candidatesHandler.List))),
	}))
	mux.Handle("/api/v1/candidates/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(candidatesHandler.Get))),
	}))
	mux.Handle("/api/v1/candidates/{id}/score", methodMux(map[string]http.Handler{
		http.MethodPost: publicLimit(authRequired(recruiterOnly(http.HandlerFunc(candidatesHandler.Score)))),
	}))
	mux.Handle("/api/v1/candidates/{id}/outreach", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(outreachHandler.Get))),
	}))
	mux.Handle("/api/v1/candidates/{id}/outreach/email", methodMux(map[string]http.Handler{
		http.MethodPost: publicLimit(authRequired(recruiterOnly(http.HandlerFunc(outreachHandler.SendEmail)))),
	}))

	mux.Handle("/api/v1/analytics/skills", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(analyticsHandler.TopSkills))),
	}))
	mux.Handle("/api/v1/analytics/education", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(analyticsHandler.Education))),
	}))
	mux.Handle("/api/v1/analytics/experience", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(analyticsHandler.Experience))),
	}))
	mux.Handle("/api/v1/analytics/kpis", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimit(authOptional(http.HandlerFunc(analyticsHandler.KPIs))),
	}))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
