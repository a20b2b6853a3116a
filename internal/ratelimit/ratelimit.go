// Package ratelimit throttles write actions per actor.
//
// The limiter is a cooldown window keyed on the last successful acquire: an
// actor gets one action per window, full stop. Token buckets would allow a
// burst after idle time, which is the wrong shape for an anti-spam cooldown.
package ratelimit

import (
	"sync"
	"time"
)

// Cooldown tracks the last acquire time per actor in memory.
//
// State is unbounded and not persisted: a restart resets all cooldowns,
// which is acceptable at the expected scale. Construct one per server via
// New rather than sharing a package-level instance, so tests can run
// independent limiters side by side.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// New returns an empty Cooldown.
func New() *Cooldown {
	return &Cooldown{last: make(map[string]time.Time)}
}

// TryAcquire reports whether actorID may act at now given the cooldown
// window. On success the acquire time is recorded and subsequent calls
// within window return false; a refused call records nothing, so being
// refused never extends the cooldown.
func (c *Cooldown) TryAcquire(actorID string, now time.Time, window time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.last[actorID]; ok && now.Sub(last) < window {
		return false
	}
	c.last[actorID] = now
	return true
}
