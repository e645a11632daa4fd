package session

import "context"

// TokenGrant is the part of a token response the session core consumes. The
// refresh credential travels out of band (an HttpOnly cookie managed by the
// transport) and never appears here.
type TokenGrant struct {
	AccessToken string
	ExpiresIn   int64 // seconds
}

// Identity is the authenticated user's profile.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// AuthAPI defines the contract for the server endpoints the controller
// drives. The HTTP client implements it; tests substitute mocks.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*TokenGrant, error)
	Register(ctx context.Context, email, password string) (*TokenGrant, error)
	Refresh(ctx context.Context) (*TokenGrant, error)
	Logout(ctx context.Context) error
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
}
