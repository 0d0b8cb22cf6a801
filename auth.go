package snoo

import (
	"context"
	"net/http"

	"github.com/gosnoo/snoo/internal"
	"github.com/gosnoo/snoo/pkg/types"
)

// defaultAuthUserAgent identifies the library itself during the token
// exchange, before the caller-supplied agent is in play.
const defaultAuthUserAgent = "desktop:snoo:0.1.0 (by snoo authenticator)"

// Authenticator is the capability of something that can provide access to the
// Reddit API. Implementations own their credentials and never expose them.
//
// Authenticators are not safe for concurrent use on their own; the
// AuthenticatedClient serializes access through its authenticator lock.
type Authenticator interface {
	// Login fetches or refreshes the access token from the API.
	Login(ctx context.Context) error

	// Token returns the token from the last successful Login, or nil if no
	// Login has succeeded yet. The client rebuilds its transport from this
	// token after re-authentication.
	Token() *types.Token

	// IsUser reports whether requests made through this authenticator act as
	// the end user (and can e.g. vote or comment) rather than as a read-only
	// browsing identity.
	IsUser() bool
}

// ClientInfo holds the application client ID and secret.
type ClientInfo struct {
	ID     string
	Secret string
}

// Credentials holds everything a script application needs to log in as a
// specific user.
type Credentials struct {
	ClientInfo
	Username string
	Password string
}

// NewCredentials bundles application and user credentials.
func NewCredentials(clientID, clientSecret, username, password string) Credentials {
	return Credentials{
		ClientInfo: ClientInfo{ID: clientID, Secret: clientSecret},
		Username:   username,
		Password:   password,
	}
}

// ScriptAuthenticator authenticates script applications with the password
// grant. Requests made through it act as the end user, so they can vote,
// comment and read the user's own identity.
type ScriptAuthenticator struct {
	// TokenURL overrides the token endpoint. Defaults to DefaultTokenURL.
	TokenURL string
	// HTTPClient overrides the HTTP client used for the exchange.
	HTTPClient *http.Client

	creds Credentials
	token *types.Token
}

// NewScriptAuthenticator creates an authenticator for the password grant.
func NewScriptAuthenticator(creds Credentials) *ScriptAuthenticator {
	return &ScriptAuthenticator{creds: creds}
}

// Login performs the password-grant token exchange and stores the token.
func (a *ScriptAuthenticator) Login(ctx context.Context) error {
	exchanger, err := internal.NewTokenExchanger(
		a.HTTPClient,
		tokenURLOrDefault(a.TokenURL),
		a.creds.ID,
		a.creds.Secret,
		defaultAuthUserAgent,
		"password",
		a.creds.Username,
		a.creds.Password,
	)
	if err != nil {
		return err
	}

	token, err := exchanger.Exchange(ctx)
	if err != nil {
		return err
	}

	a.token = token
	return nil
}

// Token returns the token from the last successful Login, or nil.
func (a *ScriptAuthenticator) Token() *types.Token { return a.token }

// IsUser reports true: script authenticators act as the end user.
func (a *ScriptAuthenticator) IsUser() bool { return true }

// AppAuthenticator authenticates with the client_credentials grant. You still
// need a client ID and secret, but you are not logged in as any user: you can
// browse, but not e.g. vote.
type AppAuthenticator struct {
	// TokenURL overrides the token endpoint. Defaults to DefaultTokenURL.
	TokenURL string
	// HTTPClient overrides the HTTP client used for the exchange.
	HTTPClient *http.Client

	info  ClientInfo
	token *types.Token
}

// NewAppAuthenticator creates an authenticator for the client_credentials grant.
func NewAppAuthenticator(clientID, clientSecret string) *AppAuthenticator {
	return &AppAuthenticator{info: ClientInfo{ID: clientID, Secret: clientSecret}}
}

// Login performs the client_credentials token exchange and stores the token.
func (a *AppAuthenticator) Login(ctx context.Context) error {
	exchanger, err := internal.NewTokenExchanger(
		a.HTTPClient,
		tokenURLOrDefault(a.TokenURL),
		a.info.ID,
		a.info.Secret,
		defaultAuthUserAgent,
		"client_credentials",
		"",
		"",
	)
	if err != nil {
		return err
	}

	token, err := exchanger.Exchange(ctx)
	if err != nil {
		return err
	}

	a.token = token
	return nil
}

// Token returns the token from the last successful Login, or nil.
func (a *AppAuthenticator) Token() *types.Token { return a.token }

// IsUser reports false: app authenticators are a read-only browsing identity.
func (a *AppAuthenticator) IsUser() bool { return false }

func tokenURLOrDefault(u string) string {
	if u == "" {
		return DefaultTokenURL
	}
	return u
}
