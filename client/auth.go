package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Login exchanges user credentials for an access token. The response's
// in-body refresh token, if any, is disregarded; the refresh credential the
// server sets via Set-Cookie lands in the jar.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	return c.postForToken(ctx, "/auth/login", bytes.NewReader(body))
}

// Register creates an account and returns the initial access token, same
// response shape as Login.
func (c *Client) Register(ctx context.Context, email, password string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return c.postForToken(ctx, "/auth/register", bytes.NewReader(body))
}

// RefreshSession mints a new access token. The request carries no body and
// no bearer token; the jar attaches the refresh cookie.
func (c *Client) RefreshSession(ctx context.Context) (*TokenResponse, error) {
	return c.postForToken(ctx, "/auth/refresh", nil)
}

// Logout asks the server to invalidate the refresh credential. The response
// body is not interesting beyond success or failure.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/logout", "", nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	resp.Body.Close()
	log.Debug().Msg("Server-side logout succeeded")
	return nil
}

// FetchCurrentUser retrieves the authenticated user's profile.
func (c *Client) FetchCurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/me", accessToken, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response body: %w", err)
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user JSON: %w", err)
	}
	return &user, nil
}

func (c *Client) postForToken(ctx context.Context, path string, body io.Reader) (*TokenResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("token request to %s failed: %w", path, err)
	}
	respBody, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response body: %w", err)
	}

	var token TokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response from %s is missing an access token", path)
	}
	log.Debug().Str("path", path).Int64("expires_in", token.ExpiresIn).Msg("Received access token")
	return &token, nil
}
