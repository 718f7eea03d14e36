// Package internal documents the TalentPulse server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: business logic (candidates, users, identifiers)
// - storage: PostgreSQL repositories and the Redis client
// - ratelimit: fixed-window request limiting
// - auth, config, email, metrics, redact, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
