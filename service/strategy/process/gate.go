package process

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/conductor/service/channel"
	"github.com/viant/conductor/service/strategy"
	"golang.org/x/sync/semaphore"
)

const (
	// Ceiling is the absolute maximum of concurrent workers
	Ceiling = 10
	// ActiveCountKey is the channel key of the shared admission counter
	ActiveCountKey = "ACTIVE_PROCESS_COUNT"
)

// Gate limits the number of concurrently running workers
type Gate interface {
	// Acquire takes a slot or fails with strategy.ErrAdmissionRefused
	Acquire(ctx context.Context) error
	// Release frees a slot; releasing with no slot taken is a no-op
	Release(ctx context.Context) error
	// Active returns number of taken slots
	Active(ctx context.Context) (int, error)
	// Limit returns the configured maximum
	Limit() int
}

// Limit caps maxWorkers at Ceiling; values <= 0 mean Ceiling
func Limit(maxWorkers int) int {
	if maxWorkers <= 0 || maxWorkers > Ceiling {
		return Ceiling
	}
	return maxWorkers
}

// SemaphoreGate is an atomic in-process gate
type SemaphoreGate struct {
	limit  int
	sem    *semaphore.Weighted
	active atomic.Int64
}

// Acquire takes a slot without blocking
func (g *SemaphoreGate) Acquire(context.Context) error {
	if !g.sem.TryAcquire(1) {
		return fmt.Errorf("%w: %d processes already running, %d allowed at a time", strategy.ErrAdmissionRefused, g.active.Load(), g.limit)
	}
	g.active.Add(1)
	return nil
}

// Release frees a slot
func (g *SemaphoreGate) Release(context.Context) error {
	for {
		active := g.active.Load()
		if active <= 0 {
			return nil
		}
		if g.active.CompareAndSwap(active, active-1) {
			g.sem.Release(1)
			return nil
		}
	}
}

// Active returns taken slots
func (g *SemaphoreGate) Active(context.Context) (int, error) {
	return int(g.active.Load()), nil
}

// Limit returns max slots
func (g *SemaphoreGate) Limit() int {
	return g.limit
}

// NewSemaphoreGate creates a semaphore gate
func NewSemaphoreGate(maxWorkers int) *SemaphoreGate {
	limit := Limit(maxWorkers)
	return &SemaphoreGate{limit: limit, sem: semaphore.NewWeighted(int64(limit))}
}

// CounterGate keeps the active worker count on a channel so that it can be
// observed by other processes. Updates are read-modify-write: they are
// serialised within one process but not across processes, where concurrent
// admitters can transiently over- or under-count.
type CounterGate struct {
	channel channel.Channel
	limit   int
	ttl     time.Duration
	mu      sync.Mutex
}

// Acquire increments the shared counter unless the limit is reached
func (g *CounterGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	active, err := g.read(ctx)
	if err != nil {
		return err
	}
	if active >= g.limit {
		return fmt.Errorf("%w: %d processes already running, %d allowed at a time", strategy.ErrAdmissionRefused, active, g.limit)
	}
	return g.write(ctx, active+1)
}

// Release decrements the shared counter
func (g *CounterGate) Release(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	active, err := g.read(ctx)
	if err != nil {
		return err
	}
	if active <= 0 {
		return nil
	}
	return g.write(ctx, active-1)
}

// Active returns the shared counter
func (g *CounterGate) Active(ctx context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.read(ctx)
}

// Limit returns max slots
func (g *CounterGate) Limit() int {
	return g.limit
}

func (g *CounterGate) read(ctx context.Context) (int, error) {
	value, ok, err := g.channel.Receive(ctx, ActiveCountKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read active process count: %w", err)
	}
	if !ok {
		return 0, nil
	}
	active, err := strconv.Atoi(strings.TrimSpace(string(value)))
	if err != nil {
		return 0, fmt.Errorf("invalid active process count %q: %w", value, err)
	}
	return active, nil
}

func (g *CounterGate) write(ctx context.Context, active int) error {
	if err := g.channel.Send(ctx, ActiveCountKey, []byte(strconv.Itoa(active)), g.ttl); err != nil {
		return fmt.Errorf("failed to write active process count: %w", err)
	}
	return nil
}

// NewCounterGate creates a channel-backed gate; ttl <= 0 uses the channel default
func NewCounterGate(aChannel channel.Channel, maxWorkers int, ttl time.Duration) *CounterGate {
	return &CounterGate{channel: aChannel, limit: Limit(maxWorkers), ttl: ttl}
}

var (
	_ Gate = (*SemaphoreGate)(nil)
	_ Gate = (*CounterGate)(nil)
)
