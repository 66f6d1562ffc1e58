package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics counts login outcomes, lockouts, and rate-limit rejections.
// A nil *AuthMetrics is a no-op, so callers do not need to guard.
type AuthMetrics struct {
	logins        metric.Int64Counter
	lockouts      metric.Int64Counter
	rateLimited   metric.Int64Counter
	tokenRefreshs metric.Int64Counter
}

// NewAuthMetrics registers the counters on the given meter provider.
func NewAuthMetrics(mp metric.MeterProvider) *AuthMetrics {
	meter := mp.Meter("authguard")
	m := &AuthMetrics{}
	var err error
	m.logins, err = meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		log.Printf("observability: register auth.login.attempts: %v", err)
	}
	m.lockouts, err = meter.Int64Counter("auth.lockouts",
		metric.WithDescription("Accounts locked after repeated failures"))
	if err != nil {
		log.Printf("observability: register auth.lockouts: %v", err)
	}
	m.rateLimited, err = meter.Int64Counter("auth.rate_limited",
		metric.WithDescription("Requests rejected by the rate limiter"))
	if err != nil {
		log.Printf("observability: register auth.rate_limited: %v", err)
	}
	m.tokenRefreshs, err = meter.Int64Counter("auth.token.refreshes",
		metric.WithDescription("Access tokens minted from refresh tokens"))
	if err != nil {
		log.Printf("observability: register auth.token.refreshes: %v", err)
	}
	return m
}

// RecordLogin records one login attempt with outcome "success", "failure", or "locked".
func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLockout records one account transitioning into the locked state.
func (m *AuthMetrics) RecordLockout(ctx context.Context) {
	if m == nil || m.lockouts == nil {
		return
	}
	m.lockouts.Add(ctx, 1)
}

// RecordRateLimited records one request rejected by the given limiter scope ("auth" or "api").
func (m *AuthMetrics) RecordRateLimited(ctx context.Context, scope string) {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

// RecordTokenRefresh records one successful refresh.
func (m *AuthMetrics) RecordTokenRefresh(ctx context.Context) {
	if m == nil || m.tokenRefreshs == nil {
		return
	}
	m.tokenRefreshs.Add(ctx, 1)
}
