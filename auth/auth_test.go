package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/writecraft/writecraft-go/keychain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewStore(keychain.NewMemory())
	client := NewClient(srv.URL, "anon-key-test", store, WithLogger(quietLogger()))
	return client, store
}

const sessionBody = `{
	"access_token": "jwt-access",
	"refresh_token": "jwt-refresh",
	"expires_in": 3600,
	"user": {
		"id": "user-1",
		"email": "ada@example.com",
		"email_confirmed_at": "2026-01-01T00:00:00Z",
		"user_metadata": {"full_name": "Ada Lovelace"}
	}
}`

func TestSignInStoresSession(t *testing.T) {
	var gotPath, gotAPIKey string
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(sessionBody))
	})

	session, err := client.SignIn(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if gotPath != "/auth/v1/token?grant_type=password" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAPIKey != "anon-key-test" {
		t.Errorf("apikey header = %q", gotAPIKey)
	}
	if session.AccessToken != "jwt-access" || session.User.Email != "ada@example.com" {
		t.Errorf("session = %+v", session)
	}
	if session.User.FullName == nil || *session.User.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %v, want Ada Lovelace", session.User.FullName)
	}
	if !session.User.EmailConfirmed {
		t.Error("EmailConfirmed = false, want true")
	}

	stored, err := store.Load()
	if err != nil {
		t.Fatalf("Load after SignIn: %v", err)
	}
	if stored.RefreshToken != "jwt-refresh" {
		t.Errorf("stored RefreshToken = %q", stored.RefreshToken)
	}
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "invalid credentials",
			body: `{"error_description":"Invalid login credentials"}`,
			want: ErrInvalidCredentials,
		},
		{
			name: "email not confirmed",
			body: `{"msg":"Email not confirmed"}`,
			want: ErrEmailNotConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})
			_, err := client.SignIn(context.Background(), "a@b.c", "pw")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSignUpAlreadyRegistered(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("path = %q, want /auth/v1/signup", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"User already registered"}`))
	})

	_, err := client.SignUp(context.Background(), "ada@example.com", "hunter2")
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestUnknownErrorKeepsMessage(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Database unavailable"}`))
	})

	_, err := client.SignIn(context.Background(), "a@b.c", "pw")
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("error type = %T, want *auth.Error", err)
	}
	if authErr.Message != "Database unavailable" {
		t.Errorf("Message = %q", authErr.Message)
	}
}

func TestOAuthURL(t *testing.T) {
	store := NewStore(keychain.NewMemory())
	client := NewClient("https://proj.supabase.co", "anon", store)

	got := client.OAuthURL("google")
	if !strings.HasPrefix(got, "https://proj.supabase.co/auth/v1/authorize?provider=google") {
		t.Errorf("OAuthURL = %q", got)
	}
	if !strings.Contains(got, "redirect_to=writecraft%3A%2F%2Fauth%2Fcallback") {
		t.Errorf("OAuthURL missing escaped redirect: %q", got)
	}
}

func TestHandleOAuthCallback(t *testing.T) {
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %q, want /auth/v1/user", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer cb-access" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"id":"user-2","email":"oauth@example.com","user_metadata":{"name":"O. Auth"}}`))
	})

	callback := "writecraft://auth/callback#access_token=cb-access&refresh_token=cb-refresh&expires_in=7200"
	session, err := client.HandleOAuthCallback(context.Background(), callback)
	if err != nil {
		t.Fatalf("HandleOAuthCallback error: %v", err)
	}
	if session.AccessToken != "cb-access" || session.RefreshToken != "cb-refresh" {
		t.Errorf("session tokens = %q/%q", session.AccessToken, session.RefreshToken)
	}
	if session.User.FullName == nil || *session.User.FullName != "O. Auth" {
		t.Errorf("FullName = %v, want O. Auth", session.User.FullName)
	}
	if session.User.EmailConfirmed {
		t.Error("EmailConfirmed = true, want false without email_confirmed_at")
	}
	if _, err := store.Load(); err != nil {
		t.Errorf("session not stored: %v", err)
	}
}

func TestHandleOAuthCallbackMissingTokens(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, callback := range []string{
		"writecraft://auth/callback",
		"writecraft://auth/callback#refresh_token=r",
		"writecraft://auth/callback#access_token=a",
	} {
		if _, err := client.HandleOAuthCallback(context.Background(), callback); err == nil {
			t.Errorf("callback %q: expected an error", callback)
		}
	}
}

func TestCurrentSessionRefreshesExpired(t *testing.T) {
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
		}
		w.Write([]byte(sessionBody))
	})

	expired := &Session{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Unix() - 60,
		User:         User{ID: "user-1", Email: "ada@example.com"},
	}
	if err := store.Save(expired); err != nil {
		t.Fatal(err)
	}

	session, err := client.CurrentSession(context.Background())
	if err != nil {
		t.Fatalf("CurrentSession error: %v", err)
	}
	if session.AccessToken != "jwt-access" {
		t.Errorf("AccessToken = %q, want the refreshed token", session.AccessToken)
	}
}

func TestCurrentSessionRefreshFailureClears(t *testing.T) {
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"refresh token revoked"}`))
	})

	expired := &Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1}
	if err := store.Save(expired); err != nil {
		t.Fatal(err)
	}

	_, err := client.CurrentSession(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("error = %v, want ErrSessionExpired", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("session should be cleared, Load err = %v", err)
	}
}

func TestCurrentSessionValidSkipsNetwork(t *testing.T) {
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a valid session")
	})

	valid := &Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix() + 600}
	if err := store.Save(valid); err != nil {
		t.Fatal(err)
	}

	session, err := client.CurrentSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if session.AccessToken != "a" {
		t.Errorf("AccessToken = %q", session.AccessToken)
	}

	token, err := client.AccessToken(context.Background())
	if err != nil || token != "a" {
		t.Errorf("AccessToken() = %q, %v", token, err)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	var loggedOut bool
	client, store := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			loggedOut = true
		}
	})

	if err := store.Save(&Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix() + 600}); err != nil {
		t.Fatal(err)
	}
	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("session should be cleared, Load err = %v", err)
	}
	if !loggedOut {
		t.Error("server-side logout not attempted")
	}

	// Signing out with no session is a no-op.
	if err := client.SignOut(context.Background()); err != nil {
		t.Errorf("SignOut without session: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(keychain.NewMemory())

	if _, err := store.Load(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Load on empty store: err = %v, want ErrNotAuthenticated", err)
	}

	name := "Ada Lovelace"
	session := &Session{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    1234567890,
		User:         User{ID: "u1", Email: "ada@example.com", FullName: &name, EmailConfirmed: true},
	}
	if err := store.Save(session); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.ExpiresAt != session.ExpiresAt || got.User.ID != "u1" || *got.User.FullName != name {
		t.Errorf("Load = %+v, want %+v", got, session)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear twice should be a no-op: %v", err)
	}
}

func TestStoreCorruptBlob(t *testing.T) {
	creds := keychain.NewMemory()
	creds.Set(keychain.AuthSessionAccount, "{not json")

	store := NewStore(creds)
	if _, err := store.Load(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Load of corrupt blob: err = %v, want ErrNotAuthenticated", err)
	}
}
