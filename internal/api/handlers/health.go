package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentpulse/server/internal/metrics"
	"github.com/talentpulse/server/internal/storage/redis"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LatencyMs int64                  `json:"latency_ms,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthChecker provides comprehensive health checks for the server
type HealthChecker struct {
	pool      *pgxpool.Pool
	cache     *redis.Client
	version   string
	gitCommit string
}

func NewHealthChecker(pool *pgxpool.Pool, cache *redis.Client, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		pool:      pool,
		cache:     cache,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Health returns a comprehensive health check handler. Overall status is
// unhealthy when any check fails and degraded when any check warns.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "shutting_down",
			})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]CheckResult)
		checks["database"] = h.checkDatabase(ctx)
		checks["migrations"] = h.checkMigrations(ctx)
		checks["redis"] = h.checkRedis(ctx)

		overallStatus := "healthy"
		statusCode := http.StatusOK
		healthValue := 2.0
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				healthValue = 0
				break
			} else if check.Status == "warn" && overallStatus == "healthy" {
				overallStatus = "degraded"
				healthValue = 1
			}
		}

		metrics.HealthStatus.Set(healthValue)
		for name, check := range checks {
			value := 0.0
			switch check.Status {
			case "pass":
				value = 2
			case "warn":
				value = 1
			}
			metrics.HealthCheckStatus.WithLabelValues(name).Set(value)
		}

		response := HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// checkDatabase verifies PostgreSQL connection and query execution
func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()

	if h.pool == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Database pool not initialized",
			Details: map[string]interface{}{
				"remediation": "Check that DATABASE_URL is set correctly and PostgreSQL is running",
			},
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	err := h.pool.QueryRow(dbCtx, "SELECT 1").Scan(&result)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		message := "Database query failed"
		details := map[string]interface{}{
			"error": err.Error(),
		}

		if ctx.Err() == context.DeadlineExceeded || dbCtx.Err() == context.DeadlineExceeded {
			message = "Database query timed out after 2 seconds"
			details["remediation"] = "Check PostgreSQL performance, network latency, or increase timeout"
		} else if strings.Contains(err.Error(), "connection refused") {
			message = "Database connection refused"
			details["remediation"] = "Verify PostgreSQL is running and DATABASE_URL host/port are correct"
		} else if strings.Contains(err.Error(), "authentication failed") || strings.Contains(err.Error(), "password") {
			message = "Database authentication failed"
			details["remediation"] = "Verify DATABASE_URL username and password are correct"
		} else {
			details["remediation"] = "Check DATABASE_URL environment variable and PostgreSQL service status"
		}

		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   details,
		}
	}

	stats := h.pool.Stat()
	details := map[string]interface{}{
		"max_connections":      stats.MaxConns(),
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
	}

	return CheckResult{
		Status:    "pass",
		Message:   "PostgreSQL connection successful",
		LatencyMs: latency,
		Details:   details,
	}
}

// checkMigrations verifies the schema is migrated and not dirty
func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	start := time.Now()

	if h.pool == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Database pool not initialized",
			Details: map[string]interface{}{
				"remediation": "Check that DATABASE_URL is set correctly and PostgreSQL is running",
			},
		}
	}

	migCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var version int64
	var dirty bool
	query := `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`
	err := h.pool.QueryRow(migCtx, query).Scan(&version, &dirty)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		message := "Failed to query migration version"
		details := map[string]interface{}{
			"error": err.Error(),
		}

		if strings.Contains(err.Error(), "does not exist") {
			message = "Migrations table not found"
			details["remediation"] = "Run database migrations first: talentpulse migrate up"
		} else {
			details["remediation"] = "Verify migrations have been applied and schema_migrations table exists"
		}

		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   details,
		}
	}

	if dirty {
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state - manual intervention required",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"version":     version,
				"dirty":       dirty,
				"remediation": "Migration failed mid-transaction; roll back or force the version before retrying",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied successfully (version %d)", version),
		LatencyMs: latency,
		Details: map[string]interface{}{
			"version": version,
			"dirty":   false,
		},
	}
}

// checkRedis verifies the cache/rate-limit store. Redis is optional: the
// server runs without it, so a missing client is a warn, not a fail.
func (h *HealthChecker) checkRedis(ctx context.Context) CheckResult {
	start := time.Now()

	if h.cache == nil {
		return CheckResult{
			Status:  "warn",
			Message: "Redis not configured (profile cache and shared rate limiting disabled)",
		}
	}

	redisCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := h.cache.Health(redisCtx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return CheckResult{
			Status:    "warn",
			Message:   "Redis ping failed",
			LatencyMs: latency,
			Details: map[string]interface{}{
				"error":       err.Error(),
				"remediation": "Check REDIS_URL and the Redis service; the API degrades but stays up",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   "Redis connection successful",
		LatencyMs: latency,
	}
}

// Healthz returns a lightweight liveness response
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz reports ready only while the database answers a probe query. A
// replica that cannot reach PostgreSQL must be pulled from rotation even
// when its process is alive.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h == nil || h.pool == nil {
			respondHealth(w, http.StatusServiceUnavailable, "not ready")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var result int
		if err := h.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
			respondHealth(w, http.StatusServiceUnavailable, "not ready")
			return
		}

		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
