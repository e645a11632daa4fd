package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State of the RefreshScheduler. Failed is terminal for the current token
// generation; a later Arm starts a fresh one.
type SchedulerState int

const (
	Idle SchedulerState = iota
	Armed
	Refreshing
	Failed
)

func (s SchedulerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Refreshing:
		return "refreshing"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// RefreshFunc performs one token refresh and returns the lifetime of the new
// access token. It is a settable field rather than a constructor argument so
// the controller can swap it without rebuilding the scheduler.
type RefreshFunc func(ctx context.Context) (expiresIn time.Duration, err error)

// RefreshScheduler owns the single proactive-refresh timer for a session.
// At most one timer is live at any instant; arming always cancels the
// previous schedule first.
type RefreshScheduler struct {
	mu        sync.Mutex
	state     SchedulerState
	timer     *time.Timer
	gen       uint64
	refresh   RefreshFunc
	onFailure func()
}

// NewRefreshScheduler creates an idle scheduler. onFailure is invoked when a
// fired refresh fails; the controller wires it to session teardown.
func NewRefreshScheduler(onFailure func()) *RefreshScheduler {
	return &RefreshScheduler{state: Idle, onFailure: onFailure}
}

// SetRefreshFunc sets the operation a fired timer runs.
func (r *RefreshScheduler) SetRefreshFunc(fn RefreshFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh = fn
}

// State reports the current scheduler state.
func (r *RefreshScheduler) State() SchedulerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Arm cancels any pending timer and schedules a refresh at three quarters of
// the token lifetime. Refreshing at 75% leaves room for network latency and
// clock drift while the token is still accepted. A non-positive lifetime arms
// nothing: the token is already due and the next explicit operation will
// surface the failure.
func (r *RefreshScheduler) Arm(expiresIn time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armLocked(expiresIn)
}

func (r *RefreshScheduler) armLocked(expiresIn time.Duration) {
	r.cancelLocked()
	if expiresIn <= 0 {
		log.Warn().Dur("expires_in", expiresIn).Msg("Token lifetime is non-positive, not scheduling a refresh")
		return
	}

	delay := expiresIn * 3 / 4
	gen := r.gen
	r.state = Armed
	r.timer = time.AfterFunc(delay, func() { r.fire(gen) })
	log.Debug().Dur("delay", delay).Msg("Scheduled proactive token refresh")
}

// Disarm cancels the pending timer if any. Safe to call in any state.
func (r *RefreshScheduler) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

// cancelLocked stops the pending timer and invalidates the current
// generation, so a fire that already left the timer queue becomes a no-op.
func (r *RefreshScheduler) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
	r.state = Idle
}

func (r *RefreshScheduler) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || r.state != Armed {
		r.mu.Unlock()
		return
	}
	fn := r.refresh
	if fn == nil {
		r.state = Failed
		onFailure := r.onFailure
		r.mu.Unlock()
		log.Error().Msg("Refresh timer fired without a refresh function")
		if onFailure != nil {
			onFailure()
		}
		return
	}
	r.state = Refreshing
	r.mu.Unlock()

	expiresIn, err := fn(context.Background())

	r.mu.Lock()
	if gen != r.gen {
		// Superseded while the request was in flight (logout or re-arm).
		// The outcome belongs to a dead generation and is discarded.
		r.mu.Unlock()
		log.Debug().Msg("Discarding refresh outcome for a superseded schedule")
		return
	}
	if err != nil {
		r.state = Failed
		onFailure := r.onFailure
		r.mu.Unlock()
		log.Error().Err(err).Msg("Proactive token refresh failed")
		if onFailure != nil {
			onFailure()
		}
		return
	}
	r.armLocked(expiresIn)
	r.mu.Unlock()
}
