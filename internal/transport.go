package internal

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerMinute caps steady-state throughput when no rate
	// configuration is supplied.
	DefaultRequestsPerMinute = 60
	// DefaultRateLimitBurst allows short spikes above the steady-state rate.
	DefaultRateLimitBurst = 10

	secondsPerMinute = 60.0
)

// BearerTransport is a RoundTripper that injects the bearer authorization and
// User-Agent headers on every outgoing request. The token is treated as
// sensitive and must never be logged.
type BearerTransport struct {
	// Token is the current access token value.
	Token string
	// UserAgent identifies the application to the remote API.
	UserAgent string
	// Base is the underlying RoundTripper. http.DefaultTransport if nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The incoming request is cloned
// before headers are added, per the RoundTripper contract.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "bearer "+t.Token)
	clone.Header.Set("User-Agent", t.UserAgent)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// NewBearerClient builds an HTTP client whose default headers carry the bearer
// authorization derived from the given token. A rebuilt client replaces the
// previous one wholesale after re-authentication.
func NewBearerClient(token, userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &BearerTransport{Token: token, UserAgent: userAgent},
		Timeout:   timeout,
	}
}

// RateLimitConfig controls how requests are throttled before reaching the API.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

// NewLimiter builds a token-bucket limiter from the config, applying defaults
// for unset fields.
func NewLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / secondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}
