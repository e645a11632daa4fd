package cmd

import (
	"context"

	"github.com/shelfmark/shelfmark/client"
	"github.com/shelfmark/shelfmark/session"
)

// apiAdapter adapts a client.Client to the session.AuthAPI interface.
type apiAdapter struct{ api *client.Client }

func (a *apiAdapter) Login(ctx context.Context, username, password string) (*session.TokenGrant, error) {
	resp, err := a.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return toGrant(resp), nil
}

func (a *apiAdapter) Register(ctx context.Context, email, password string) (*session.TokenGrant, error) {
	resp, err := a.api.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toGrant(resp), nil
}

func (a *apiAdapter) Refresh(ctx context.Context) (*session.TokenGrant, error) {
	resp, err := a.api.RefreshSession(ctx)
	if err != nil {
		return nil, err
	}
	return toGrant(resp), nil
}

func (a *apiAdapter) Logout(ctx context.Context) error {
	return a.api.Logout(ctx)
}

func (a *apiAdapter) FetchIdentity(ctx context.Context, accessToken string) (*session.Identity, error) {
	user, err := a.api.FetchCurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &session.Identity{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func toGrant(resp *client.TokenResponse) *session.TokenGrant {
	// Only access_token and expires_in are consumed; an in-body refresh
	// token is the transport cookie's job, not ours.
	return &session.TokenGrant{AccessToken: resp.AccessToken, ExpiresIn: resp.ExpiresIn}
}
