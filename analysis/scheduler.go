package analysis

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// scheduler coalesces repeated Schedule calls into a single trailing-edge
// firing of fn. Each document owns one scheduler; the clock is injectable
// so tests can drive the timer deterministically.
type scheduler struct {
	clk    clock.Clock
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *clock.Timer
}

func newScheduler(clk clock.Clock, window time.Duration, fn func()) *scheduler {
	return &scheduler{clk: clk, window: window, fn: fn}
}

// Schedule arms (or re-arms) the timer. Bursts of calls inside the window
// collapse into one firing after the last call.
func (s *scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = s.clk.AfterFunc(s.window, s.fire)
}

func (s *scheduler) fire() {
	s.mu.Lock()

	if s.timer == nil {
		// Flushed between the timer firing and this running.
		s.mu.Unlock()

		return
	}

	s.timer = nil
	s.mu.Unlock()

	s.fn()
}

// Flush runs fn immediately when a firing is pending, and disarms the
// timer. A no-op when nothing is scheduled.
func (s *scheduler) Flush() {
	s.mu.Lock()

	if s.timer == nil {
		s.mu.Unlock()

		return
	}

	s.timer.Stop()
	s.timer = nil
	s.mu.Unlock()

	s.fn()
}

// Stop disarms the timer without running fn. A no-op when nothing is
// scheduled.
func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return
	}

	s.timer.Stop()
	s.timer = nil
}

// Pending reports whether a firing is armed.
func (s *scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timer != nil
}
