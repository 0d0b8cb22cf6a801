package snoo

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gosnoo/snoo/internal"
	pkgerrs "github.com/gosnoo/snoo/pkg/errors"
	"github.com/gosnoo/snoo/pkg/types"
	"github.com/gosnoo/snoo/pkg/validation"
)

const (
	// DefaultBaseURL is the default Reddit API base URL.
	DefaultBaseURL = "https://oauth.reddit.com"
	// DefaultTokenURL is the default token exchange endpoint.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	// DefaultUserAgent is the default user agent string. Supply your own; the
	// API expects "platform:app-name:version by /u/username".
	DefaultUserAgent = "snoo/0.1.0"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultLimit is the default page size for feeds, the maximum the server
	// allows.
	DefaultLimit = 100
)

// Config holds the configuration for the client.
type Config struct {
	// Authenticator decides the identity requests are made under. Use
	// NewScriptAuthenticator to act as a user, NewAppAuthenticator to browse
	// anonymously. Required.
	Authenticator Authenticator

	// UserAgent identifies your application to the API.
	// Defaults to DefaultUserAgent.
	UserAgent string

	// BaseURL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// Logger for structured diagnostics. Optional; the access token is never
	// logged.
	Logger *slog.Logger

	// HTTPTimeout bounds each request. Defaults to DefaultTimeout.
	HTTPTimeout time.Duration

	// RequestsPerMinute caps steady-state request throughput. Defaults to 60.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10.
	Burst int
}

// Client is the top-level entry point. It wraps one shared AuthenticatedClient
// and hands out subreddit and front-page handles bound to it.
//
//	auth := snoo.NewAppAuthenticator(clientID, clientSecret)
//	client, err := snoo.NewClient(ctx, &snoo.Config{
//		Authenticator: auth,
//		UserAgent:     "desktop:myapp:1.0 (by /u/me)",
//	})
//	if err != nil {
//		return err
//	}
//
//	feed := client.Subreddit("golang").Hot()
//	posts, err := feed.Take(ctx, 5)
type Client struct {
	client  *AuthenticatedClient
	baseURL string
}

// NewClient validates the configuration, logs in with the authenticator and
// returns a ready client. Construction fails if the login fails.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.Authenticator == nil {
		return nil, &pkgerrs.ConfigError{Field: "Authenticator", Message: "authenticator is required"}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limiter := internal.NewLimiter(internal.RateLimitConfig{
		RequestsPerMinute: config.RequestsPerMinute,
		Burst:             config.Burst,
	})

	client, err := newAuthenticatedClient(ctx, config.Authenticator, userAgent, limiter, config.Logger, timeout)
	if err != nil {
		return nil, err
	}

	return &Client{client: client, baseURL: baseURL}, nil
}

// Subreddit returns a handle to the named subreddit, without the "r/" prefix.
func (c *Client) Subreddit(name string) (*Subreddit, error) {
	if !validation.IsValidSubreddit(name) {
		return nil, &pkgerrs.ConfigError{Field: "Subreddit", Message: "invalid subreddit name: " + name}
	}
	return &Subreddit{URL: c.baseURL + "/r/" + name, client: c.client}, nil
}

// FrontPage returns a handle to the front page listings.
func (c *Client) FrontPage() *FrontPage {
	return &FrontPage{URL: c.baseURL, client: c.client}
}

// IsUser reports whether the client acts as the end user.
func (c *Client) IsUser() bool {
	return c.client.IsUser()
}

// Me fetches information about the authenticated identity. The result is not
// cached. With an app-only authenticator the remote API rejects the read and
// the failure surfaces as an authentication error.
func (c *Client) Me(ctx context.Context) (*types.Me, error) {
	body, err := c.client.Get(ctx, c.baseURL+"/api/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var me types.Me
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "decode identity", Err: err}
	}

	return &me, nil
}
