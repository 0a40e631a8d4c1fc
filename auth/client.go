package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultRedirectURL is the custom-scheme URL the OAuth provider
// redirects back to after consent.
const DefaultRedirectURL = "writecraft://auth/callback"

const defaultExpiresIn = 3600

// Client talks to the GoTrue auth endpoints and keeps the active
// session in its Store.
type Client struct {
	baseURL     string
	anonKey     string
	redirectURL string
	httpClient  *http.Client
	sessions    *Store
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRedirectURL overrides the OAuth redirect target.
func WithRedirectURL(u string) Option {
	return func(c *Client) { c.redirectURL = u }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an auth client for the project at baseURL,
// authenticating anonymous requests with anonKey and persisting
// sessions through sessions.
func NewClient(baseURL, anonKey string, sessions *Store, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		redirectURL: DefaultRedirectURL,
		httpClient:  &http.Client{},
		sessions:    sessions,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignUp registers a new account and stores the resulting session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.passwordGrant(ctx, "/auth/v1/signup", "sign up", email, password)
}

// SignIn authenticates with email and password and stores the
// resulting session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.passwordGrant(ctx, "/auth/v1/token?grant_type=password", "sign in", email, password)
}

func (c *Client) passwordGrant(ctx context.Context, path, op, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	raw, status, err := c.post(ctx, path, body, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, mapAuthError(op, raw)
	}

	session, err := c.sessionFromResponse(raw)
	if err != nil {
		return nil, &Error{Op: op, Message: err.Error(), Err: err}
	}
	if err := c.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// OAuthURL returns the browser URL that starts the OAuth flow for the
// given provider (e.g. "google", "github").
func (c *Client) OAuthURL(provider string) string {
	return fmt.Sprintf("%s/auth/v1/authorize?provider=%s&redirect_to=%s",
		c.baseURL, url.QueryEscape(provider), url.QueryEscape(c.redirectURL))
}

// HandleOAuthCallback completes the OAuth flow from the callback URL,
// whose fragment carries access_token, refresh_token, and expires_in.
// The user record is fetched with the new access token and the session
// is stored.
func (c *Client) HandleOAuthCallback(ctx context.Context, callbackURL string) (*Session, error) {
	_, fragment, ok := strings.Cut(callbackURL, "#")
	if !ok {
		return nil, &Error{Op: "oauth callback", Message: "no fragment in callback URL"}
	}

	params, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, &Error{Op: "oauth callback", Message: "malformed callback fragment", Err: err}
	}
	accessToken := params.Get("access_token")
	refreshToken := params.Get("refresh_token")
	if accessToken == "" {
		return nil, &Error{Op: "oauth callback", Message: "no access token in callback"}
	}
	if refreshToken == "" {
		return nil, &Error{Op: "oauth callback", Message: "no refresh token in callback"}
	}
	expiresIn, err := strconv.ParseInt(params.Get("expires_in"), 10, 64)
	if err != nil || expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	user, err := c.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    c.now().Unix() + expiresIn,
		User:         *user,
	}
	if err := c.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut clears the stored session and revokes it on the server.
// Server-side revocation is best effort.
func (c *Client) SignOut(ctx context.Context) error {
	session, loadErr := c.sessions.Load()

	if err := c.sessions.Clear(); err != nil {
		return err
	}

	if loadErr == nil {
		if _, _, err := c.post(ctx, "/auth/v1/logout", nil, session.AccessToken); err != nil {
			c.logger.Debug("server-side sign out failed", "error", err)
		}
	}
	return nil
}

// CurrentSession returns the stored session, refreshing it first when
// it has expired. A session that cannot be refreshed is cleared and
// ErrSessionExpired is returned.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	session, err := c.sessions.Load()
	if err != nil {
		return nil, err
	}

	if session.ExpiresAt > c.now().Unix() {
		return session, nil
	}

	refreshed, err := c.refresh(ctx, session.RefreshToken)
	if err != nil {
		if clearErr := c.sessions.Clear(); clearErr != nil {
			c.logger.Warn("could not clear expired session", "error", clearErr)
		}
		return nil, ErrSessionExpired
	}
	return refreshed, nil
}

// Refresh exchanges the stored refresh token for a new session.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	session, err := c.sessions.Load()
	if err != nil {
		return nil, err
	}
	return c.refresh(ctx, session.RefreshToken)
}

// AccessToken returns a currently valid access token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	session, err := c.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	return session.AccessToken, nil
}

// ResetPassword sends a password recovery email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	raw, status, err := c.post(ctx, "/auth/v1/recover", map[string]string{"email": email}, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return mapAuthError("reset password", raw)
	}
	return nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	raw, status, err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", body, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, ErrSessionExpired
	}

	session, err := c.sessionFromResponse(raw)
	if err != nil {
		return nil, &Error{Op: "refresh", Message: err.Error(), Err: err}
	}
	if err := c.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Wire shapes for GoTrue responses.
type authResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    *int64   `json:"expires_at"`
	ExpiresIn    *int64   `json:"expires_in"`
	User         wireUser `json:"user"`
}

type wireUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
	UserMetadata     struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

func (c *Client) sessionFromResponse(raw []byte) (*Session, error) {
	var resp authResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("auth response carried no access token")
	}

	expiresAt := int64(0)
	switch {
	case resp.ExpiresAt != nil:
		expiresAt = *resp.ExpiresAt
	case resp.ExpiresIn != nil:
		expiresAt = c.now().Unix() + *resp.ExpiresIn
	default:
		expiresAt = c.now().Unix() + defaultExpiresIn
	}

	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         resp.User.toUser(),
	}, nil
}

func (u wireUser) toUser() User {
	user := User{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != "",
	}
	if name := u.UserMetadata.FullName; name != "" {
		user.FullName = &name
	} else if name := u.UserMetadata.Name; name != "" {
		user.FullName = &name
	}
	if avatar := u.UserMetadata.AvatarURL; avatar != "" {
		user.AvatarURL = &avatar
	}
	return user
}

func (c *Client) fetchUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, &Error{Op: "fetch user", Message: err.Error(), Err: err}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "fetch user", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: "fetch user", Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapAuthError("fetch user", raw)
	}

	var wu wireUser
	if err := json.Unmarshal(raw, &wu); err != nil {
		return nil, &Error{Op: "fetch user", Message: err.Error(), Err: err}
	}
	user := wu.toUser()
	return &user, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, bearer string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Op: "request " + path, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{Op: "request " + path, Message: err.Error(), Err: err}
	}
	return raw, resp.StatusCode, nil
}

// mapAuthError extracts the most descriptive message the error body
// offers and maps well-known messages onto sentinels.
func mapAuthError(op string, raw []byte) error {
	msg := "Unknown error"
	for _, field := range []string{"message", "error_description", "msg", "error"} {
		if v := gjson.GetBytes(raw, field); v.Exists() && v.String() != "" {
			msg = v.String()
			break
		}
	}

	switch {
	case strings.Contains(msg, "already registered"):
		return ErrUserAlreadyExists
	case strings.Contains(msg, "Invalid login"), strings.Contains(msg, "Invalid email or password"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "Email not confirmed"):
		return ErrEmailNotConfirmed
	}
	return &Error{Op: op, Message: msg}
}
