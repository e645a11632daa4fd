package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrUnauthorized marks responses with status 401 or 403. The session
// controller treats it on the identity path as session invalidation.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d %s. Body: %s", e.Status, http.StatusText(e.Status), e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to a shelfmark server. Its cookie jar is where the refresh
// credential lives: the server sets it as an HttpOnly cookie and the jar
// attaches it to refresh and logout calls. Application code never reads it.
type Client struct {
	BaseURL string
	http    *http.Client
}

// New creates a Client for the given server. jarPath is where the cookie jar
// persists between runs so a later process can restore the session; pass ""
// for an in-memory jar.
func New(baseURL string, jarPath string) (*Client, error) {
	jar, err := NewPersistentJar(jarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cookie jar: %w", err)
	}
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second, Jar: jar},
	}, nil
}

// newRequest creates an HTTP request against the server. An empty
// accessToken omits the Authorization header (the auth endpoints rely on the
// cookie jar instead).
func (c *Client) newRequest(ctx context.Context, method, path, accessToken string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("Failed to create HTTP request object")
		return nil, err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// send performs the request and checks for a 2xx status. On other statuses
// the body is folded into an APIError.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("Sending HTTP request")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		bodyStr := ""
		if readErr == nil {
			bodyStr = string(bodyBytes)
		}
		resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode, Message: bodyStr}
		log.Error().Str("method", req.Method).Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("HTTP request returned non-OK status")
		return nil, apiErr
	}
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("HTTP request successful")
	return resp, nil
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Str("url", resp.Request.URL.String()).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}
