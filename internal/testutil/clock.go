package testutil

import (
	"sync"
	"time"
)

// BaseTime is the time of the first event a Sequence issues.
var BaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// EventSpacing separates consecutive event times.
const EventSpacing = time.Second

// Sequence issues event ids 1, 2, 3... with event times EventSpacing apart
// from BaseTime. Safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

// Next issues the next event id and its time.
func (s *Sequence) Next() (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last, TimeOf(s.last)
}

// Last returns the most recently issued id, 0 before the first Next.
func (s *Sequence) Last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// TimeOf is the time a Sequence assigns to event id.
func TimeOf(id int64) time.Time {
	return BaseTime.Add(time.Duration(id-1) * EventSpacing)
}
