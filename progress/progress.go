// Package progress provides a lightweight tracker that keeps aggregated
// counters (tasks total, running, completed, …) for a single orchestrator run.

package progress

import (
	"sync"
	"time"

	"github.com/viant/conductor/internal/clock"
)

// Delta represents an incremental counter change emitted by the orchestrator.
// The fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Halted    int
	Failed    int
}

// Snapshot is a point-in-time copy of run counters
type Snapshot struct {
	// Identification, filled when the run starts.
	RunID     string
	Name      string
	StartedAt time.Time

	TotalTasks     int
	PendingTasks   int
	RunningTasks   int
	CompletedTasks int
	HaltedTasks    int
	FailedTasks    int
}

// Progress keeps aggregated task counters for a run. It is safe for
// concurrent use.
type Progress struct {
	mu       sync.Mutex
	state    Snapshot
	onChange func(Snapshot)
}

// Update applies the supplied delta. If an onChange callback has been
// registered it is invoked with a snapshot outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.state.TotalTasks += d.Total
	p.state.PendingTasks += d.Pending
	p.state.RunningTasks += d.Running
	p.state.CompletedTasks += d.Completed
	p.state.HaltedTasks += d.Halted
	p.state.FailedTasks += d.Failed
	snapshot := p.state
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it; only one callback can be active.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

// Start stamps the run identification
func (p *Progress) Start(runID, name string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.state.RunID = runID
	p.state.Name = name
	p.state.StartedAt = clock.Now()
	p.mu.Unlock()
}

// New creates a tracker
func New(onChange func(Snapshot)) *Progress {
	return &Progress{onChange: onChange}
}
