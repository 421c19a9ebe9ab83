package auth

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// AccessToken is a bearer token and the instant it stops being valid.
// A zero ExpiresAt means the provider reported no lifetime.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenCache holds at most one access token and clears it when it expires.
//
// Each Store cancels the previous expiry timer and bumps a generation; a
// timer only clears the entry it was scheduled for.
type TokenCache struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	token      *AccessToken
	timer      clockwork.Timer
	generation uint64
}

func NewTokenCache(clock clockwork.Clock) *TokenCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenCache{clock: clock}
}

// Store replaces the cached token. A non-positive lifetime stores a token with no expiry.
func (c *TokenCache) Store(value string, lifetime time.Duration) AccessToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.generation++

	tok := AccessToken{Value: value}
	if lifetime > 0 {
		tok.ExpiresAt = c.clock.Now().Add(lifetime)
		gen := c.generation
		c.timer = c.clock.AfterFunc(lifetime, func() { c.expire(gen) })
	}
	c.token = &tok
	return tok
}

// Get returns the cached token value if one is present and not expired.
func (c *TokenCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return "", false
	}
	if !c.token.ExpiresAt.IsZero() && !c.clock.Now().Before(c.token.ExpiresAt) {
		c.clearLocked()
		return "", false
	}
	return c.token.Value, true
}

// Invalidate drops the cached token and its pending timer.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Stop cancels the pending expiry timer without dropping the token.
func (c *TokenCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *TokenCache) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.token = nil
	c.timer = nil
}

func (c *TokenCache) clearLocked() {
	c.stopLocked()
	c.generation++
	c.token = nil
}

func (c *TokenCache) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
