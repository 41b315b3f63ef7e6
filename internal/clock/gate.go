package clock

import (
	"errors"
	"fmt"
)

// MaxFrequency is the highest supported gate frequency, the gate period has
// a resolution of one millisecond.
const MaxFrequency = 1000

var errInvalidFrequency = errors.New("invalid frequency")

// Gate fires at a fixed frequency. It fires at most once per Fire call, time
// that elapsed beyond one period is not caught up.
type Gate struct {
	period uint32
	last   uint32
}

// NewGate returns a gate for the given frequency in Hz.
func NewGate(frequency uint32) (*Gate, error) {
	if frequency == 0 || frequency > MaxFrequency {
		return nil, fmt.Errorf("%w %d Hz, supported range 1-%d Hz", errInvalidFrequency, frequency, MaxFrequency)
	}
	return &Gate{
		period: MaxFrequency / frequency,
	}, nil
}

// Period returns the gate period in milliseconds.
func (g *Gate) Period() uint32 {
	return g.period
}

// Fire returns whether at least one period elapsed since the gate fired last
// and remembers now as the new fire time if it did.
func (g *Gate) Fire(now uint32) bool {
	if now-g.last < g.period {
		return false
	}
	g.last = now
	return true
}
