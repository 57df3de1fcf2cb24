package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/conductor/internal/clock"
	"github.com/viant/conductor/service/channel"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Channel is an in-process channel. It is not visible to other processes,
// so only the inline strategy and tests can use it.
type Channel struct {
	config  channel.Config
	mu      sync.RWMutex
	entries map[string]*entry
}

// Send stores a copy of value under key
func (c *Channel) Send(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.config.Key(key)] = &entry{value: stored, expiresAt: clock.Now().Add(c.config.Expiry(ttl))}
	return nil
}

// Receive returns a live value
func (c *Channel) Receive(_ context.Context, key string) ([]byte, bool, error) {
	id := c.config.Key(key)
	c.mu.RLock()
	anEntry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !clock.Now().Before(anEntry.expiresAt) {
		c.mu.Lock()
		if current, ok := c.entries[id]; ok && current == anEntry {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return anEntry.value, true, nil
}

// FlushMessage receives then deletes a value
func (c *Channel) FlushMessage(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := c.Receive(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if err = c.Delete(ctx, key); err != nil {
		return nil, false, err
	}
	return value, ok, nil
}

// Delete removes a value
func (c *Channel) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, c.config.Key(key))
	return nil
}

// Len returns number of stored entries, including expired ones not yet read
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// New creates an in-memory channel
func New(config channel.Config) *Channel {
	config.Init()
	return &Channel{
		config:  config,
		entries: make(map[string]*entry),
	}
}

var _ channel.Channel = (*Channel)(nil)
