package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New(serverURL, "")
	require.NoError(t, err)
	return c
}

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds["username"])
		assert.Equal(t, "pw", creds["password"])
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "opaque-refresh", HttpOnly: true, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-1",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	token, err := c.Login(context.Background(), "ada@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Login(context.Background(), "ada@example.com", "wrong")

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshSession_AttachesRefreshCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "opaque-refresh", HttpOnly: true, Path: "/"})
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "access-1", "expires_in": 3600})
		case "/auth/refresh":
			// The refresh credential must arrive via the cookie, not a body
			// or bearer token.
			cookie, err := r.Cookie("refresh_token")
			require.NoError(t, err)
			assert.Equal(t, "opaque-refresh", cookie.Value)
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "access-2", "expires_in": 3600})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	token, err := c.RefreshSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
}

func TestRefreshSession_InBodyRefreshTokenIsIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-1",
			"refresh_token": "must-not-be-used",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	token, err := c.RefreshSession(context.Background())
	require.NoError(t, err)

	// The field is parsed but nothing in this client stores or sends it.
	assert.Equal(t, "access-1", token.AccessToken)
}

func TestRefreshSession_MissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.RefreshSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing an access token")
}

func TestLogout_Success(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/logout", r.URL.Path)
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	require.NoError(t, c.Logout(context.Background()))
	assert.True(t, called)
}

func TestFetchCurrentUser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	user, err := c.FetchCurrentUser(context.Background(), "access-1")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestFetchCurrentUser_UnauthorizedMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.FetchCurrentUser(context.Background(), "stale-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}
