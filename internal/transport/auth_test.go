package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func tokenServer(t *testing.T, wantGrant string, response map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad token form: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != wantGrant {
			t.Errorf("grant_type = %q, want %q", got, wantGrant)
		}
		if got := r.PostFormValue("client_id"); got != "client-1" {
			t.Errorf("client_id = %q", got)
		}
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBeginAuthRequiresClientID(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(AuthConfig{}, nil)
	if _, err := a.BeginAuth(); err == nil {
		t.Fatalf("expected error without client id")
	}
}

func TestBeginAuthBuildsAuthorizeURL(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(AuthConfig{ClientID: "client-1", LoopbackPort: 18961}, nil)
	defer a.shutdownServer()

	authURL, err := a.BeginAuth()
	if err != nil {
		t.Fatalf("begin auth failed: %v", err)
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("invalid auth url: %v", err)
	}
	q := parsed.Query()
	if q.Get("response_type") != "code" || q.Get("client_id") != "client-1" {
		t.Fatalf("unexpected query: %v", q)
	}
	if got := q.Get("redirect_uri"); got != "http://127.0.0.1:18961/callback" {
		t.Fatalf("unexpected redirect uri: %q", got)
	}
	if !strings.Contains(q.Get("scope"), "user-modify-playback-state") {
		t.Fatalf("missing playback scope: %q", q.Get("scope"))
	}
}

func TestCallbackExchangesCode(t *testing.T) {
	t.Parallel()

	tokens := tokenServer(t, "authorization_code", map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"expires_in":    3600,
	})

	authorized := make(chan struct{}, 1)
	a := NewAuthenticator(AuthConfig{
		ClientID:     "client-1",
		ClientSecret: "secret",
		TokenURL:     tokens.URL,
		LoopbackPort: 18962,
	}, func() { authorized <- struct{}{} })
	defer a.shutdownServer()

	if _, err := a.BeginAuth(); err != nil {
		t.Fatalf("begin auth failed: %v", err)
	}

	// The loopback server starts asynchronously; retry until it answers.
	callbackURL := "http://127.0.0.1:18962/callback?code=auth-code-1"
	var resp *http.Response
	var err error
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err = http.Get(callbackURL)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("callback server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback returned %d", resp.StatusCode)
	}

	select {
	case <-authorized:
	case <-time.After(time.Second):
		t.Fatalf("authorized callback never fired")
	}
	if !a.Authorized() {
		t.Fatalf("expected authorized state")
	}

	token, err := a.Token(context.Background())
	if err != nil || token != "access-1" {
		t.Fatalf("unexpected token: %q, %v", token, err)
	}
}

func TestCallbackRejectsMissingCode(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(AuthConfig{ClientID: "client-1", LoopbackPort: 18963}, nil)
	defer a.shutdownServer()

	if _, err := a.BeginAuth(); err != nil {
		t.Fatalf("begin auth failed: %v", err)
	}

	var resp *http.Response
	var err error
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err = http.Get("http://127.0.0.1:18963/callback")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("callback server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing code, got %d", resp.StatusCode)
	}
	if a.Authorized() {
		t.Fatalf("must not be authorized")
	}
}

func TestTokenRefreshesWhenExpired(t *testing.T) {
	t.Parallel()

	tokens := tokenServer(t, "refresh_token", map[string]any{
		"access_token": "access-2",
		"expires_in":   3600,
	})

	a := NewAuthenticator(AuthConfig{
		ClientID:     "client-1",
		ClientSecret: "secret",
		TokenURL:     tokens.URL,
	}, nil)
	a.mu.Lock()
	a.accessToken = "stale"
	a.refreshToken = "refresh-1"
	a.expiresAt = time.Now().Add(-time.Minute)
	a.mu.Unlock()

	token, err := a.Token(context.Background())
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if token != "access-2" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	// The refresh token survives a response that omits it.
	if !a.Authorized() {
		t.Fatalf("expected authorized state after refresh")
	}
}

func TestTokenWithoutAuthorizationFails(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(AuthConfig{ClientID: "client-1"}, nil)
	if _, err := a.Token(context.Background()); err == nil {
		t.Fatalf("expected error before authorization")
	}
}
