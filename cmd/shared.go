package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/shelfmark/shelfmark/client"
	"github.com/shelfmark/shelfmark/session"
)

// defaultServerURL is used when SHELFMARK_SERVER is not set.
const defaultServerURL = "http://localhost:8080"

// serverURL resolves the server address from the environment.
func serverURL() string {
	if u := os.Getenv("SHELFMARK_SERVER"); u != "" {
		return u
	}
	return defaultServerURL
}

// dataDir is where the library cache and the cookie jar live.
func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".shelfmark")
}

func cookieJarPath() string {
	return filepath.Join(dataDir(), "cookies.json")
}

// newSessionController builds the one controller instance a CLI invocation
// uses, wired to a client whose jar holds the refresh credential.
func newSessionController() (*session.Controller, *client.Client, error) {
	api, err := client.New(serverURL(), cookieJarPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return session.NewController(&apiAdapter{api: api}), api, nil
}

// restoreSession builds a controller and attempts the silent startup
// restore. Callers check State().Authenticated to see whether it worked.
func restoreSession(ctx context.Context) (*session.Controller, *client.Client, error) {
	ctrl, api, err := newSessionController()
	if err != nil {
		return nil, nil, err
	}
	if !ctrl.Restore(ctx) {
		log.Debug().Msg("No session could be restored")
	}
	return ctrl, api, nil
}

// currentAccessToken restores the session and hands back a usable token, or
// an error telling the user to log in.
func currentAccessToken(ctx context.Context) (string, *client.Client, error) {
	ctrl, api, err := restoreSession(ctx)
	if err != nil {
		return "", nil, err
	}
	token, ok := ctrl.Store().Get()
	if !ok {
		return "", nil, fmt.Errorf("not logged in; run 'shelfmark login' first")
	}
	return token, api, nil
}
