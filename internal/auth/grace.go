// Package auth governs continued access to the local cache while the device
// is offline.
package auth

import (
	"errors"
	"sync"
	"time"
)

// State is the session state of the grace controller.
type State string

const (
	// StateAuthenticated is the state while the device is online with a
	// valid remote authentication.
	StateAuthenticated State = "authenticated"

	// StateOfflineGrace is the state while offline and within the grace
	// window. Reads and writes proceed against the local cache.
	StateOfflineGrace State = "offline-grace"

	// StateLocked is reached when the grace window elapses while still
	// offline. No local mutation is permitted until a fresh successful
	// authentication.
	StateLocked State = "locked"
)

// DefaultGracePeriod is how long offline access continues after the last
// successful remote authentication.
const DefaultGracePeriod = 7 * 24 * time.Hour

var ErrSessionLocked = errors.New("the offline grace period has expired, authenticate again to continue")

// GraceController tracks the last successful remote authentication and
// derives the session state from it.
//
// The state is purely time based and monotonic: local activity never
// extends the window, only a fresh successful remote authentication does.
type GraceController struct {
	// Now returns the current time. Overridable for tests.
	Now func() time.Time

	GracePeriod time.Duration

	mu           sync.Mutex
	lastAuthTime time.Time
}

// NewGraceController returns a controller with the default grace period.
func NewGraceController() *GraceController {
	return &GraceController{
		Now:         time.Now,
		GracePeriod: DefaultGracePeriod,
	}
}

// RecordAuth records a successful remote authentication, restarting the
// grace window.
func (g *GraceController) RecordAuth() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAuthTime = g.Now()
}

// LastAuthTime returns the time of the last successful remote
// authentication.
func (g *GraceController) LastAuthTime() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAuthTime
}

// State derives the session state from the connectivity state and the time
// since the last authentication.
func (g *GraceController) State(online bool) State {
	if online {
		return StateAuthenticated
	}

	if g.Remaining() > 0 {
		return StateOfflineGrace
	}

	return StateLocked
}

// Remaining returns how much of the grace window is left. It is zero or
// negative once the session would lock.
func (g *GraceController) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lastAuthTime.IsZero() {
		return 0
	}

	return g.GracePeriod - g.Now().Sub(g.lastAuthTime)
}

// AllowWrites reports whether local mutations are currently permitted.
func (g *GraceController) AllowWrites(online bool) error {
	if g.State(online) == StateLocked {
		return ErrSessionLocked
	}

	return nil
}
