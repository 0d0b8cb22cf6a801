package snoo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"

	"github.com/gosnoo/snoo/internal"
	pkgerrs "github.com/gosnoo/snoo/pkg/errors"
	"github.com/gosnoo/snoo/pkg/validation"
)

// errTokenMissing guards the invariant that a successful Login always leaves a
// token behind. It should be unreachable.
const errTokenMissing = "token was not set after logging in, but no error was returned"

// AuthenticatedClient performs authenticated GET requests against the API.
//
// It owns one shared HTTP transport and one shared Authenticator, each behind
// its own lock, and is safe for use by many goroutines at once. When a request
// comes back with an authentication challenge (401/403) the client logs in
// again, rebuilds the transport from the fresh token and retries the request
// exactly once.
type AuthenticatedClient struct {
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger

	mu         sync.Mutex // guards httpClient
	httpClient *http.Client

	authMu sync.Mutex // guards auth
	auth   Authenticator
}

// NewAuthenticatedClient logs in with the given authenticator and builds a
// client whose transport carries the resulting bearer token on every request.
func NewAuthenticatedClient(ctx context.Context, auth Authenticator, userAgent string) (*AuthenticatedClient, error) {
	return newAuthenticatedClient(ctx, auth, userAgent, internal.NewLimiter(internal.RateLimitConfig{}), nil, DefaultTimeout)
}

func newAuthenticatedClient(ctx context.Context, auth Authenticator, userAgent string, limiter *rate.Limiter, logger *slog.Logger, timeout time.Duration) (*AuthenticatedClient, error) {
	if auth == nil {
		return nil, &pkgerrs.ConfigError{Field: "Authenticator", Message: "authenticator cannot be nil"}
	}
	if !validation.IsValidUserAgent(userAgent) {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent is empty or not a valid header value"}
	}

	if err := auth.Login(ctx); err != nil {
		return nil, err
	}

	token := auth.Token()
	if token == nil {
		return nil, &pkgerrs.AuthError{Message: errTokenMissing}
	}

	return &AuthenticatedClient{
		userAgent:  userAgent,
		timeout:    timeout,
		limiter:    limiter,
		logger:     logger,
		httpClient: internal.NewBearerClient(token.AccessToken, userAgent, timeout),
		auth:       auth,
	}, nil
}

// IsUser reports whether the underlying authenticator acts as the end user.
func (c *AuthenticatedClient) IsUser() bool {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.auth.IsUser()
}

// Get issues an authenticated GET to rawURL, with opts encoded into the query
// string. On an authentication challenge it refreshes the token and retries
// once; on any other non-200 status it fails immediately. The response body is
// returned for the caller to decode.
//
// The transport lock is held for the whole call, including recovery, so
// concurrent callers always observe a fully rebuilt transport.
func (c *AuthenticatedClient) Get(ctx context.Context, rawURL string, opts any) ([]byte, error) {
	u, err := addOptions(rawURL, opts)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &pkgerrs.RequestError{Operation: "rate limit wait", URL: u, Err: err}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, body, err := c.do(ctx, u)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Authentication challenge, handled below.
	default:
		return nil, &pkgerrs.AuthError{StatusCode: resp.StatusCode, Message: "server returned an unexpected status code"}
	}

	if c.logger != nil {
		c.logger.Debug("bearer token rejected, re-authenticating", "url", rawURL, "status", resp.StatusCode)
	}

	if err := c.refreshLocked(ctx); err != nil {
		return nil, err
	}

	resp, body, err = c.do(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	// No third attempt.
	return nil, &pkgerrs.AuthError{
		StatusCode: resp.StatusCode,
		Message:    "failed to authenticate even after requesting a new token, check credentials",
	}
}

// do executes one GET and drains the body. The response is returned with its
// body already closed.
func (c *AuthenticatedClient) do(ctx context.Context, u string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, &pkgerrs.RequestError{Operation: "get", URL: u, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &pkgerrs.RequestError{Operation: "get", URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &pkgerrs.RequestError{Operation: "get", URL: u, Err: err}
	}

	return resp, body, nil
}

// refreshLocked logs in again and rebuilds the shared transport from the fresh
// token. The caller must hold the transport lock.
func (c *AuthenticatedClient) refreshLocked(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	if err := c.auth.Login(ctx); err != nil {
		return err
	}

	token := c.auth.Token()
	if token == nil {
		return &pkgerrs.AuthError{Message: errTokenMissing}
	}

	c.httpClient = internal.NewBearerClient(token.AccessToken, c.userAgent, c.timeout)
	return nil
}

// addOptions encodes opts into the query string of s, merged with any query
// parameters s already carries. On a key collision opts wins.
func addOptions(s string, opts any) (string, error) {
	if opts == nil {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, &pkgerrs.RequestError{Operation: "build request URL", URL: s, Err: err}
	}

	qs, err := query.Values(opts)
	if err != nil {
		return s, &pkgerrs.RequestError{Operation: "encode query parameters", URL: s, Err: err}
	}

	merged := u.Query()
	for k, vs := range qs {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
