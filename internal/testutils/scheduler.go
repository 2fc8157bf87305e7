package testutils

import (
	"sort"
	"sync"
	"time"

	"github.com/aretw0/genie/pkg/ports"
)

// ManualScheduler is a virtual clock implementing ports.Scheduler.
// Callbacks only run when the test advances time, on the caller's goroutine.
type ManualScheduler struct {
	mu        sync.Mutex
	now       time.Duration
	seq       int
	pending   []*manualTimer
	cancelled []*manualTimer
}

type manualTimer struct {
	at  time.Duration
	seq int
	f   func()
}

// NewManualScheduler creates a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers f to run once the clock reaches now+d.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) ports.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, p := range s.pending {
			if p == t {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				s.cancelled = append(s.cancelled, t)
				return true
			}
		}
		return false
	}
}

// Advance moves the clock forward, firing due callbacks in deadline order.
// Callbacks scheduled by a firing callback run too if they fall due within d.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		s.mu.Unlock()

		next.f()
	}
}

// RunAll advances the clock until nothing is pending.
func (s *ManualScheduler) RunAll() {
	for i := 0; i < 1000; i++ {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		s.sort()
		wait := s.pending[0].at - s.now
		s.mu.Unlock()

		s.Advance(wait)
	}
}

// FireCancelled runs every callback that was cancelled, simulating timers
// that lost the race with their cancellation.
func (s *ManualScheduler) FireCancelled() {
	s.mu.Lock()
	stale := s.cancelled
	s.cancelled = nil
	s.mu.Unlock()

	for _, t := range stale {
		t.f()
	}
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) sort() {
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].at == s.pending[j].at {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].at < s.pending[j].at
	})
}

func (s *ManualScheduler) popDue(target time.Duration) *manualTimer {
	if len(s.pending) == 0 {
		return nil
	}
	s.sort()
	if s.pending[0].at > target {
		return nil
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	return t
}
