package channel

import (
	"fmt"
	"time"
)

const (
	// DefaultPrefix is prepended to every key
	DefaultPrefix = "thread"
	// DefaultTTL is the expiry used when Send gets no ttl
	DefaultTTL = 60 * time.Second
)

// Config defines channel settings
type Config struct {
	// URL locates shared storage (file:// for cross-process, mem:// for tests); memory channels ignore it
	URL    string        `json:"url,omitempty" yaml:"url,omitempty"`
	Prefix string        `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	TTL    time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// DefaultConfig returns the default channel configuration
func DefaultConfig() Config {
	return Config{
		Prefix: DefaultPrefix,
		TTL:    DefaultTTL,
	}
}

// Init fills in defaults
func (c *Config) Init() {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
}

// Validate checks config
func (c *Config) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("channel.ttl must be >= 0")
	}
	return nil
}

// Key returns prefixed key
func (c *Config) Key(key string) string {
	return c.Prefix + key
}

// Expiry returns ttl or the default one
func (c *Config) Expiry(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}
