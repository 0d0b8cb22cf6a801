package snoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gosnoo/snoo/internal"
	pkgerrs "github.com/gosnoo/snoo/pkg/errors"
	"github.com/gosnoo/snoo/pkg/types"
)

// stubAuthenticator hands out tokens from a fixed list, one per Login call.
type stubAuthenticator struct {
	mu       sync.Mutex
	tokens   []string
	logins   int
	loginErr error
	user     bool
}

func (a *stubAuthenticator) Login(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loginErr != nil {
		return a.loginErr
	}
	a.logins++
	return nil
}

func (a *stubAuthenticator) Token() *types.Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.logins == 0 || len(a.tokens) == 0 {
		return nil
	}
	idx := a.logins - 1
	if idx >= len(a.tokens) {
		idx = len(a.tokens) - 1
	}
	return &types.Token{AccessToken: a.tokens[idx], ExpiresIn: 3600, Scope: "*", TokenType: "bearer"}
}

func (a *stubAuthenticator) IsUser() bool { return a.user }

func (a *stubAuthenticator) loginCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// transportToken reads the token the shared transport currently carries.
func transportToken(t *testing.T, c *AuthenticatedClient) string {
	t.Helper()
	bt, ok := c.httpClient.Transport.(*internal.BearerTransport)
	if !ok {
		t.Fatalf("transport is %T, want *internal.BearerTransport", c.httpClient.Transport)
	}
	return bt.Token
}

func newTestClient(t *testing.T, auth Authenticator) *AuthenticatedClient {
	t.Helper()
	client, err := newAuthenticatedClient(context.Background(), auth, "snoo-test/1.0", nil, nil, DefaultTimeout)
	if err != nil {
		t.Fatalf("newAuthenticatedClient() error = %v", err)
	}
	return client
}

func TestNewAuthenticatedClientValidation(t *testing.T) {
	t.Parallel()

	t.Run("nil authenticator", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuthenticatedClient(context.Background(), nil, "snoo-test/1.0")
		var cfgErr *pkgerrs.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigError", err)
		}
	})

	t.Run("invalid user agent", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuthenticatedClient(context.Background(), &stubAuthenticator{tokens: []string{"tok"}}, "bad\nagent")
		var cfgErr *pkgerrs.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigError", err)
		}
	})

	t.Run("login error propagates", func(t *testing.T) {
		t.Parallel()
		loginErr := &pkgerrs.AuthError{Message: "nope"}
		_, err := NewAuthenticatedClient(context.Background(), &stubAuthenticator{loginErr: loginErr}, "snoo-test/1.0")
		if !errors.Is(err, loginErr) {
			t.Fatalf("error = %v, want %v", err, loginErr)
		}
	})

	t.Run("token missing after successful login", func(t *testing.T) {
		t.Parallel()
		_, err := NewAuthenticatedClient(context.Background(), &stubAuthenticator{}, "snoo-test/1.0")
		var authErr *pkgerrs.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("error = %v, want *AuthError", err)
		}
		if !strings.Contains(authErr.Error(), "token was not set") {
			t.Errorf("error %q should report the missing token", authErr.Error())
		}
	})
}

func TestGetSuccess(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	auth := &stubAuthenticator{tokens: []string{"tok1"}}
	client := newTestClient(t, auth)

	body, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok": true}` {
		t.Errorf("body = %q", body)
	}
	if gotAuth != "bearer tok1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "bearer tok1")
	}
	if got := auth.loginCount(); got != 1 {
		t.Errorf("login count = %d, want 1", got)
	}
}

func TestGetReauthenticatesOnce(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") == "bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	auth := &stubAuthenticator{tokens: []string{"stale", "fresh"}}
	client := newTestClient(t, auth)

	body, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok": true}` {
		t.Errorf("body = %q", body)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
	if got := auth.loginCount(); got != 2 {
		t.Errorf("login count = %d, want 2", got)
	}
	if got := transportToken(t, client); got != "fresh" {
		t.Errorf("transport token = %q, want %q", got, "fresh")
	}
}

func TestGetFailsAfterSecondChallenge(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	auth := &stubAuthenticator{tokens: []string{"stale", "fresh"}}
	client := newTestClient(t, auth)

	_, err := client.Get(context.Background(), server.URL, nil)

	var authErr *pkgerrs.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Get() error = %v, want *AuthError", err)
	}
	if !strings.Contains(authErr.Error(), "check credentials") {
		t.Errorf("error %q should tell the caller to check credentials", authErr.Error())
	}
	// Exactly one retry, and the transport keeps the refreshed token.
	if got := requests.Load(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
	if got := transportToken(t, client); got != "fresh" {
		t.Errorf("transport token = %q, want %q", got, "fresh")
	}
}

func TestGetUnexpectedStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	auth := &stubAuthenticator{tokens: []string{"tok1"}}
	client := newTestClient(t, auth)

	_, err := client.Get(context.Background(), server.URL, nil)

	var authErr *pkgerrs.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Get() error = %v, want *AuthError", err)
	}
	if authErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", authErr.StatusCode)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	if got := auth.loginCount(); got != 1 {
		t.Errorf("login count = %d, want 1 (no re-login)", got)
	}
}

func TestGetTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, &stubAuthenticator{tokens: []string{"tok1"}})

	_, err := client.Get(context.Background(), serverURL, nil)

	var reqErr *pkgerrs.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Get() error = %v, want *RequestError", err)
	}
}

func TestGetConcurrentCallersShareOneRecovery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	auth := &stubAuthenticator{tokens: []string{"stale", "fresh"}}
	client := newTestClient(t, auth)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get(context.Background(), server.URL, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Get() error = %v", err)
		}
	}
	if got := transportToken(t, client); got != "fresh" {
		t.Errorf("transport token = %q, want %q", got, "fresh")
	}
}

func TestAddOptions(t *testing.T) {
	t.Parallel()

	got, err := addOptions("https://example.com/r/golang/hot", &ListingOptions{Limit: 25, After: "t3_abc"})
	if err != nil {
		t.Fatalf("addOptions() error = %v", err)
	}
	want := "https://example.com/r/golang/hot?after=t3_abc&limit=25"
	if got != want {
		t.Errorf("addOptions() = %q, want %q", got, want)
	}

	got, err = addOptions("https://example.com/r/golang/hot?raw_json=1", &ListingOptions{Limit: 25, After: "t3_abc"})
	if err != nil {
		t.Fatalf("addOptions() error = %v", err)
	}
	want = "https://example.com/r/golang/hot?after=t3_abc&limit=25&raw_json=1"
	if got != want {
		t.Errorf("addOptions() = %q, want existing query parameters preserved %q", got, want)
	}

	got, err = addOptions("https://example.com/api/v1/me", nil)
	if err != nil {
		t.Fatalf("addOptions() error = %v", err)
	}
	if got != "https://example.com/api/v1/me" {
		t.Errorf("addOptions() = %q, want the URL unchanged", got)
	}
}
