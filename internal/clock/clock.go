// Package clock provides the millisecond tick source and the fixed rate gates
// that schedule instruction execution and frame updates.
package clock

import "time"

// Source provides a monotonic millisecond tick counter.
type Source interface {
	// Ticks returns the milliseconds elapsed since the source was created.
	Ticks() uint32
	// Wait yields the calling goroutine between two loop iterations.
	Wait()
}

// Monotonic is a Source based on the monotonic system clock.
type Monotonic struct {
	start time.Time
	idle  time.Duration
}

// DefaultIdle is the time that Wait sleeps, it is shorter than the period of
// the fastest gate that is expected to be used.
const DefaultIdle = 250 * time.Microsecond

// NewMonotonic returns a tick source starting at 0 that sleeps for the idle
// duration on every Wait call.
func NewMonotonic(idle time.Duration) *Monotonic {
	return &Monotonic{
		start: time.Now(),
		idle:  idle,
	}
}

// Ticks returns the milliseconds elapsed since the source was created.
// The counter wraps around after about 49 days.
func (m *Monotonic) Ticks() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

// Wait sleeps for the configured idle duration.
func (m *Monotonic) Wait() {
	if m.idle > 0 {
		time.Sleep(m.idle)
	}
}
