package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFlow_Run_Success(t *testing.T) {
	// Set up a mock token exchange server.
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer"}`)
	}))
	defer tokenServer.Close()

	cfg := &oauth2.Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://example.com/auth",
			TokenURL: tokenServer.URL,
		},
	}

	flow := &Flow{
		Config: cfg,
		OpenURL: func(rawURL string) error {
			// Simulate the browser redirect: parse the auth URL, extract
			// the redirect_uri, then hit it with a code.
			go func() {
				parsed, err := neturl.Parse(rawURL)
				if err != nil {
					return
				}
				redirectURI := parsed.Query().Get("redirect_uri")
				resp, err := http.Get(redirectURI + "?code=test-code")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	token, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestFlow_Run_NoCodeInCallback(t *testing.T) {
	cfg := &oauth2.Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://example.com/auth",
			TokenURL: "http://example.com/token",
		},
	}

	flow := &Flow{
		Config: cfg,
		OpenURL: func(rawURL string) error {
			go func() {
				parsed, err := neturl.Parse(rawURL)
				if err != nil {
					return
				}
				redirectURI := parsed.Query().Get("redirect_uri")
				// Hit callback WITHOUT a code parameter.
				resp, err := http.Get(redirectURI)
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	_, err := flow.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code in callback")
}

func TestFlow_Run_ContextCancelled(t *testing.T) {
	cfg := &oauth2.Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://example.com/auth",
			TokenURL: "http://example.com/token",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())

	flow := &Flow{
		Config: cfg,
		OpenURL: func(rawURL string) error {
			// Cancel immediately -- do not simulate a callback.
			cancel()
			return nil
		},
	}

	_, err := flow.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveToken_LoadToken_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
	}

	require.NoError(t, SaveToken(path, tok))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
}

func TestSaveToken_RestrictsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadToken_MissingFile(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open token file")
}

func TestRevoke(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a"}))
	assert.True(t, HasToken(path))

	require.NoError(t, Revoke(path))
	assert.False(t, HasToken(path))

	// Revoking again is not an error.
	assert.NoError(t, Revoke(path))
}

func TestNewOAuthConfig_IncludesAllScopes(t *testing.T) {
	cfg := NewOAuthConfig("id", "secret")
	assert.Equal(t, "id", cfg.ClientID)
	assert.Len(t, cfg.Scopes, 5)
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/gmail.send")
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/calendar.events")
}
