package inline

import (
	"strconv"
	"sync"
)

type outcome struct {
	value any
	err   error
}

// Sequence issues worker ids and keeps results for every inline strategy
// built with it. Share one Sequence to get a single id space across
// strategies.
type Sequence struct {
	mu      sync.Mutex
	last    uint64
	results map[string]*outcome
}

// NewSequence creates a sequence starting at 1
func NewSequence() *Sequence {
	return &Sequence{results: make(map[string]*outcome)}
}

// Reset restarts ids from 1 and drops stored results, which also invalidates
// ids handed out before the reset.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
	s.results = make(map[string]*outcome)
}

// Last returns the most recently issued id, or "" when none was issued
func (s *Sequence) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == 0 {
		return ""
	}
	return strconv.FormatUint(s.last, 10)
}

// Pending returns the number of results not yet taken
func (s *Sequence) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *Sequence) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return strconv.FormatUint(s.last, 10)
}

func (s *Sequence) store(id string, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = &outcome{value: value, err: err}
}

func (s *Sequence) take(id string) (*outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anOutcome, ok := s.results[id]
	delete(s.results, id)
	return anOutcome, ok
}
