package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotAuthenticated is returned by operations that need a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// errStaleSession marks an async outcome that arrived after the session it
// belonged to was torn down or replaced.
var errStaleSession = errors.New("session superseded")

// State is the consumer-facing view of the session. The route-guard analog
// (the CLI, a UI) reads it; only the controller mutates the underlying data.
type State struct {
	Authenticated bool
	Loading       bool
	Identity      *Identity
}

// Controller orchestrates the session lifecycle: login, registration,
// startup restore, proactive refresh and logout. It is the only writer of
// the TokenStore and the only driver of the RefreshScheduler. Construct one
// per running client and pass it to consumers explicitly.
type Controller struct {
	mu       sync.Mutex
	api      AuthAPI
	store    *TokenStore
	sched    *RefreshScheduler
	identity *Identity
	loading  bool
	epoch    uint64
	onChange func(State)
}

// NewController wires a controller to its collaborators. The scheduler's
// failure path and refresh operation are bound here, so every way a refresh
// can die converges on the same teardown.
func NewController(api AuthAPI) *Controller {
	c := &Controller{
		api:     api,
		store:   NewTokenStore(),
		loading: true,
	}
	c.sched = NewRefreshScheduler(c.teardown)
	c.sched.SetRefreshFunc(c.performRefresh)
	return c
}

// Store exposes the token store to consumers that attach the access token to
// outgoing requests. Consumers only read it.
func (c *Controller) Store() *TokenStore {
	return c.store
}

// Scheduler exposes the refresh scheduler, mainly for state inspection.
func (c *Controller) Scheduler() *RefreshScheduler {
	return c.sched
}

// SetOnChange registers a hook invoked after every state transition.
func (c *Controller) SetOnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, authenticated := c.store.Get()
	st := State{Authenticated: authenticated, Loading: c.loading}
	if c.identity != nil {
		ident := *c.identity
		st.Identity = &ident
	}
	return st
}

// Restore attempts a silent session restore at startup, using only the
// refresh credential the transport holds. It reports whether a session was
// restored; failures leave the user unauthenticated and are not surfaced as
// errors. The loading flag transitions to false exactly once, after the
// attempt completes either way.
func (c *Controller) Restore(ctx context.Context) bool {
	defer c.finishLoading()

	grant, err := c.api.Refresh(ctx)
	if err != nil {
		log.Info().Err(err).Msg("No session restored at startup")
		c.teardown()
		return false
	}
	if err := c.establish(ctx, grant); err != nil {
		log.Warn().Err(err).Msg("Session restore failed after refresh")
		return false
	}
	log.Info().Msg("Session restored")
	return true
}

// Login authenticates with user credentials. Failures from the login
// endpoint are returned unmodified and leave local state untouched; the
// caller decides how to present them. On success the token is stored, the
// refresh is scheduled and the identity fetched before Login returns, so a
// caller never observes a half-initialized session.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	grant, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return c.establish(ctx, grant)
}

// Register creates an account and establishes a session, symmetric to Login.
func (c *Controller) Register(ctx context.Context, email, password string) error {
	grant, err := c.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return c.establish(ctx, grant)
}

// Logout tears down the local session first, then notifies the server so it
// can invalidate the refresh credential. The network call is best effort:
// its failure never blocks or reverts the local teardown.
func (c *Controller) Logout(ctx context.Context) {
	c.teardown()
	if err := c.api.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("Server-side logout failed; the local session is already cleared")
	}
}

// RefreshIdentity re-fetches the user profile with the current token. A
// failure means the token was invalidated server-side, so the session is
// torn down rather than left authenticated without a resolvable identity.
func (c *Controller) RefreshIdentity(ctx context.Context) error {
	token, ok := c.store.Get()
	if !ok {
		return ErrNotAuthenticated
	}
	epoch := c.currentEpoch()

	ident, err := c.api.FetchIdentity(ctx, token)
	if err != nil {
		c.teardown()
		return fmt.Errorf("failed to refresh identity: %w", err)
	}

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return errStaleSession
	}
	c.identity = ident
	c.mu.Unlock()
	c.notify()
	return nil
}

// establish stores the granted token, schedules its renewal and fetches the
// identity. Any identity failure rolls the whole session back.
func (c *Controller) establish(ctx context.Context, grant *TokenGrant) error {
	expiresIn := time.Duration(grant.ExpiresIn) * time.Second

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.store.Set(grant.AccessToken, expiresIn)
	c.sched.Arm(expiresIn)
	c.mu.Unlock()

	ident, err := c.api.FetchIdentity(ctx, grant.AccessToken)
	if err != nil {
		c.teardown()
		return fmt.Errorf("failed to fetch identity: %w", err)
	}

	c.mu.Lock()
	if epoch != c.epoch {
		// The session this grant belonged to was torn down or replaced
		// while the identity fetch was in flight.
		c.mu.Unlock()
		return errStaleSession
	}
	c.identity = ident
	c.mu.Unlock()
	c.notify()
	return nil
}

// performRefresh is the scheduler's refresh operation. The refresh
// credential itself is attached by the transport; nothing here reads it. A
// grant that arrives after the session epoch moved on is dropped so a stale
// response can never repopulate a cleared store.
func (c *Controller) performRefresh(ctx context.Context) (time.Duration, error) {
	epoch := c.currentEpoch()

	grant, err := c.api.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	expiresIn := time.Duration(grant.ExpiresIn) * time.Second

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return 0, errStaleSession
	}
	c.store.Set(grant.AccessToken, expiresIn)
	c.mu.Unlock()

	log.Debug().Msg("Access token refreshed")
	return expiresIn, nil
}

// teardown is the single way to become logged out: disarm the scheduler,
// clear the token, clear the identity. It is idempotent; every failure path
// that invalidates the credential lands here.
func (c *Controller) teardown() {
	c.mu.Lock()
	c.epoch++
	c.identity = nil
	c.sched.Disarm()
	c.store.Clear()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) finishLoading() {
	c.mu.Lock()
	done := !c.loading
	c.loading = false
	c.mu.Unlock()
	if !done {
		c.notify()
	}
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(c.State())
	}
}
