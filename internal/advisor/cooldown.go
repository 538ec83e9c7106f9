package advisor

import (
	"sync"
	"time"
)

const defaultCooldownWindow = 10 * time.Second

// CooldownPolicy gates AI calls per caller key. The engine itself stays
// stateless: whoever builds the Advisor decides whether and how asks are
// throttled. Implementations must be safe for concurrent use.
type CooldownPolicy interface {
	Allow(key string) bool
	RetryAfter() time.Duration
}

// FixedWindowCooldown allows one AI question per key per window.
type FixedWindowCooldown struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

// NewFixedWindowCooldown builds the policy. A nil now func uses time.Now; a
// non-positive window falls back to the default.
func NewFixedWindowCooldown(window time.Duration, now func() time.Time) *FixedWindowCooldown {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = defaultCooldownWindow
	}
	return &FixedWindowCooldown{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

// Allow records a hit and reports whether the key may call the AI now.
func (c *FixedWindowCooldown) Allow(key string) bool {
	if c == nil {
		return true
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastHit[key]; ok {
		if now.Sub(last) < c.window {
			return false
		}
	}
	c.lastHit[key] = now
	return true
}

// RetryAfter is how long a blocked caller should wait.
func (c *FixedWindowCooldown) RetryAfter() time.Duration {
	if c == nil {
		return defaultCooldownWindow
	}
	return c.window
}

var _ CooldownPolicy = (*FixedWindowCooldown)(nil)
