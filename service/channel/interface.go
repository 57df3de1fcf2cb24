package channel

import (
	"context"
	"time"
)

// Channel represents a shared key/value medium with per-entry expiry. It is
// used to pass results and counters across worker boundaries.
//
// FlushMessage is Receive followed by Delete; the two steps are not atomic and
// concurrent flushers of the same key can both observe the value.
type Channel interface {
	// Send stores value under key, overwriting any previous value. A ttl <= 0
	// uses the channel default.
	Send(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Receive returns the live value, or false when unset or expired
	Receive(ctx context.Context, key string) ([]byte, bool, error)

	// FlushMessage receives then deletes the value
	FlushMessage(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes the value
	Delete(ctx context.Context, key string) error
}
