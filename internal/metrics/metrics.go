package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all TalentPulse metrics
const namespace = "talentpulse"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthStatus is a gauge that tracks overall server health status
// Values: 0 = unhealthy, 1 = degraded, 2 = healthy
var HealthStatus = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_status",
		Help:      "Overall server health status (0=unhealthy, 1=degraded, 2=healthy)",
	},
)

// HealthCheckStatus tracks individual health check results
// Values: 0 = fail, 1 = warn, 2 = pass
var HealthCheckStatus = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_check_status",
		Help:      "Individual health check status (0=fail, 1=warn, 2=pass)",
	},
	[]string{"check"},
)

// LoginAttemptsTotal counts sign-in attempts by outcome
var LoginAttemptsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of sign-in attempts",
	},
	[]string{"outcome"}, // outcome: success|invalid_credentials|rate_limited|error
)

// RateLimitDecisionsTotal counts rate limiter decisions by tier and outcome
var RateLimitDecisionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of rate limiter decisions",
	},
	[]string{"tier", "outcome"}, // outcome: allowed|blocked|error
)

// ProfileCacheTotal counts candidate profile cache lookups by result
var ProfileCacheTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_total",
		Help:      "Total number of candidate profile cache lookups",
	},
	[]string{"result"}, // result: hit|miss|error
)

// OutreachEmailsTotal counts outreach emails by outcome
var OutreachEmailsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outreach_emails_total",
		Help:      "Total number of outreach emails",
	},
	[]string{"outcome"}, // outcome: sent|failed|skipped
)

// Init initializes the metrics registry and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	Registry.MustRegister(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
