package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// AuthConfig holds the OAuth application settings for the music service.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	LoopbackPort int
}

// Authenticator runs the authorization-code flow with a loopback redirect
// and implements TokenSource with automatic refresh.
type Authenticator struct {
	cfg  AuthConfig
	http *http.Client
	log  *slog.Logger

	mu           sync.Mutex
	server       *echo.Echo
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	onAuthorized func()
}

func NewAuthenticator(cfg AuthConfig, onAuthorized func()) *Authenticator {
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://accounts.spotify.com/authorize"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://accounts.spotify.com/api/token"
	}
	if cfg.LoopbackPort <= 0 {
		cfg.LoopbackPort = 8978
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"user-modify-playback-state", "user-read-playback-state"}
	}
	return &Authenticator{
		cfg:          cfg,
		http:         &http.Client{Timeout: 15 * time.Second},
		log:          slog.Default(),
		onAuthorized: onAuthorized,
	}
}

func (a *Authenticator) redirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", a.cfg.LoopbackPort)
}

// BeginAuth starts the loopback callback server and returns the URL the
// frontend should open in the user's browser. Calling it again while a
// flow is pending just returns a fresh URL.
func (a *Authenticator) BeginAuth() (string, error) {
	if strings.TrimSpace(a.cfg.ClientID) == "" {
		return "", errors.New("music service client id is not configured")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.GET("/callback", a.handleCallback)
		a.server = e
		go func() {
			if err := e.Start(fmt.Sprintf("127.0.0.1:%d", a.cfg.LoopbackPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Warn("auth callback server stopped", "error", err)
			}
		}()
	}

	query := url.Values{
		"response_type": {"code"},
		"client_id":     {a.cfg.ClientID},
		"redirect_uri":  {a.redirectURI()},
		"scope":         {strings.Join(a.cfg.Scopes, " ")},
	}
	return a.cfg.AuthURL + "?" + query.Encode(), nil
}

func (a *Authenticator) handleCallback(c echo.Context) error {
	if errMsg := c.QueryParam("error"); errMsg != "" {
		return c.String(http.StatusBadRequest, "Authorization failed: "+errMsg)
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Missing authorization code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	if err := a.exchange(ctx, code); err != nil {
		a.log.Warn("token exchange failed", "error", err)
		return c.String(http.StatusBadGateway, "Token exchange failed")
	}

	a.shutdownServer()
	if a.onAuthorized != nil {
		a.onAuthorized()
	}
	return c.HTML(http.StatusOK, "<html><body>Connected. You can close this window.</body></html>")
}

func (a *Authenticator) shutdownServer() {
	a.mu.Lock()
	server := a.server
	a.server = nil
	a.mu.Unlock()
	if server == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()
}

// Token returns a valid access token, refreshing shortly before expiry.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	token := a.accessToken
	refresh := a.refreshToken
	expired := token == "" || time.Now().After(a.expiresAt.Add(-30*time.Second))
	a.mu.Unlock()

	if !expired {
		return token, nil
	}
	if refresh == "" {
		return "", errors.New("not authorized with the music service")
	}

	if err := a.refresh(ctx, refresh); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken, nil
}

// Authorized reports whether a token has been obtained.
func (a *Authenticator) Authorized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshToken != "" || a.accessToken != ""
}

func (a *Authenticator) exchange(ctx context.Context, code string) error {
	return a.tokenRequest(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {a.redirectURI()},
	})
}

func (a *Authenticator) refresh(ctx context.Context, refreshToken string) error {
	return a.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

func (a *Authenticator) tokenRequest(ctx context.Context, form url.Values) error {
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return fmt.Errorf("invalid token response: %w", err)
	}
	if out.AccessToken == "" {
		return errors.New("token response missing access token")
	}

	a.mu.Lock()
	a.accessToken = out.AccessToken
	if out.RefreshToken != "" {
		a.refreshToken = out.RefreshToken
	}
	a.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	a.mu.Unlock()
	return nil
}
