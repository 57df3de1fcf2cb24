package fs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/conductor/internal/clock"
	"github.com/viant/conductor/service/channel"
)

// record is the stored representation of a channel entry
type record struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Channel implements a storage-backed channel: one JSON file per key under
// config.URL. With a file:// URL every process on the host sees the same
// entries.
type Channel struct {
	fs      afs.Service
	config  channel.Config
	baseURL string
	mu      sync.RWMutex
}

// Config returns the channel configuration
func (c *Channel) Config() channel.Config {
	return c.config
}

// Send persists value under key
func (c *Channel) Send(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data, err := json.Marshal(&record{Value: value, ExpiresAt: clock.Now().Add(c.config.Expiry(ttl))})
	if err != nil {
		return fmt.Errorf("failed to marshal channel entry %v: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entryURL := c.entryURL(key)
	if err = c.fs.Upload(ctx, entryURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to send channel entry %v: %w", entryURL, err)
	}
	return nil
}

// Receive loads a live value; expired entries are removed
func (c *Channel) Receive(ctx context.Context, key string) ([]byte, bool, error) {
	entryURL := c.entryURL(key)
	c.mu.RLock()
	aRecord, err := c.load(ctx, entryURL)
	c.mu.RUnlock()
	if err != nil || aRecord == nil {
		return nil, false, err
	}
	if !clock.Now().Before(aRecord.ExpiresAt) {
		if err = c.Delete(ctx, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return aRecord.Value, true, nil
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
func (c *Channel) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entryURL := c.entryURL(key)
	exists, err := c.fs.Exists(ctx, entryURL)
	if err != nil {
		return fmt.Errorf("failed to check channel entry %v: %w", entryURL, err)
	}
	if !exists {
		return nil
	}
	if err = c.fs.Delete(ctx, entryURL); err != nil {
		return fmt.Errorf("failed to delete channel entry %v: %w", entryURL, err)
	}
	return nil
}

func (c *Channel) load(ctx context.Context, entryURL string) (*record, error) {
	exists, err := c.fs.Exists(ctx, entryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check channel entry %v: %w", entryURL, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := c.fs.DownloadWithURL(ctx, entryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel entry %v: %w", entryURL, err)
	}
	aRecord := &record{}
	if err = json.Unmarshal(data, aRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel entry %v: %w", entryURL, err)
	}
	return aRecord, nil
}

func (c *Channel) entryURL(key string) string {
	return url.Join(c.baseURL, fileName(c.config.Key(key))+".json")
}

// fileName keeps simple keys readable and encodes anything else so that
// distinct keys never share a file
func fileName(key string) string {
	for _, r := range key {
		if !isSafe(r) {
			return "~" + base64.RawURLEncoding.EncodeToString([]byte(key))
		}
	}
	return key
}

func isSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
}

// New creates a storage-backed channel rooted at config.URL
func New(ctx context.Context, fs afs.Service, config channel.Config) (*Channel, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("channel url cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	config.Init()
	baseURL := url.Normalize(config.URL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create channel directory %v: %w", baseURL, err)
		}
	}
	return &Channel{fs: fs, config: config, baseURL: baseURL}, nil
}

var _ channel.Channel = (*Channel)(nil)
