package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentpulse/server/internal/api/problem"
	"github.com/talentpulse/server/internal/config"
	"github.com/talentpulse/server/internal/metrics"
	"github.com/talentpulse/server/internal/ratelimit"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	TierLogin  RateLimitTier = "login" // Aggressive limiting for sign-in attempts
)

// RateLimit enforces a fixed-window limit per client and tier. The limiter
// counts in Redis so the window is shared across instances. On limiter errors
// the request is allowed through: sign-in availability wins over strictness
// when Redis is down.
func RateLimit(tier RateLimitTier, cfg config.RateLimitConfig, limiter ratelimit.Limiter, env string, logger zerolog.Logger) func(http.Handler) http.Handler {
	limit, window := tierLimit(tier, cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := string(tier) + ":" + clientKey(r, cfg.TrustedProxyCIDRs)
			result, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				metrics.RateLimitDecisionsTotal.WithLabelValues(string(tier), "error").Inc()
				logger.Warn().Err(err).Str("tier", string(tier)).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				metrics.RateLimitDecisionsTotal.WithLabelValues(string(tier), "blocked").Inc()
				retryAfter := int(time.Until(result.ResetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too many requests", nil, env)
				return
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues(string(tier), "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func tierLimit(tier RateLimitTier, cfg config.RateLimitConfig) (int, time.Duration) {
	switch tier {
	case TierLogin:
		return cfg.LoginAttempts, cfg.LoginWindow
	default:
		return cfg.PublicPerMinute, time.Minute
	}
}

// clientKey extracts the client identifier for rate limiting. X-Forwarded-For
// and X-Real-IP are only trusted when the request arrives from a configured
// proxy CIDR, so clients cannot spoof their way past the limiter.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	if r == nil {
		return ""
	}

	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}

	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}

	return false
}
