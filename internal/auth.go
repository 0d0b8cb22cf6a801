package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	pkgerrs "github.com/gosnoo/snoo/pkg/errors"
	"github.com/gosnoo/snoo/pkg/types"
)

// TokenExchanger performs the OAuth-style token exchange: it trades application
// (and optionally user) credentials for a bearer access token.
type TokenExchanger struct {
	client       *http.Client
	tokenURL     *url.URL
	clientID     string
	clientSecret string
	userAgent    string
	form         url.Values
}

// NewTokenExchanger creates a token exchanger for the given grant type.
// Username and password are only included in the form when both are set.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewTokenExchanger(httpClient *http.Client, tokenURL, clientID, clientSecret, userAgent, grantType, username, password string) (*TokenExchanger, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(tokenURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to parse token URL", Err: err}
	}

	form := url.Values{}
	form.Set("grant_type", grantType)
	if username != "" && password != "" {
		form.Set("username", username)
		form.Set("password", password)
	}

	return &TokenExchanger{
		client:       httpClient,
		tokenURL:     parsedURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		form:         form,
	}, nil
}

// okButError is the shape Reddit returns when the exchange failed semantically
// even though the HTTP status may be 200 OK.
type okButError struct {
	Error string `json:"error"`
}

// Exchange executes the token exchange and decodes the response.
//
// The response body is tried against three shapes in order: a valid token, an
// "ok status but embedded error" payload, and finally the status code itself.
// The status code alone is not a trustworthy success signal, so the token
// decode always comes first.
func (x *TokenExchanger) Exchange(ctx context.Context) (*types.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.tokenURL.String(), strings.NewReader(x.form.Encode()))
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to create token request", Err: err}
	}

	req.SetBasicAuth(x.clientID, x.clientSecret)
	req.Header.Set("User-Agent", x.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "token exchange", URL: x.tokenURL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "token exchange", URL: x.tokenURL.String(), Err: err}
	}

	var token types.Token
	if err := json.Unmarshal(body, &token); err == nil && token.AccessToken != "" {
		return &token, nil
	}

	var embedded okButError
	if err := json.Unmarshal(body, &embedded); err == nil && embedded.Error != "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("credentials are most likely wrong, server returned: %s", embedded.Error),
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    "client ID or secret are wrong, server returned 401 Unauthorized",
		}
	}

	return nil, &pkgerrs.AuthError{
		StatusCode: resp.StatusCode,
		Message:    "unexpected token exchange response",
		Body:       string(body),
	}
}
