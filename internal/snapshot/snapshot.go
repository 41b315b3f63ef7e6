// Package snapshot provides the record that the emulation loop publishes the
// machine state and the instruction trace to, and that observers read from.
//
// The record is guarded by a single mutex. The emulation loop is the only
// writer of trace and state; observers read consistent copies of both and may
// set the pause flag that the loop polls on every instruction tick.
package snapshot

import (
	"sync"

	"github.com/retroenv/retrochip8/internal/machine"
)

// DefaultTraceCapacity is the default number of trace lines kept.
const DefaultTraceCapacity = 100

// Status is the run status of the emulation loop.
type Status int

// Run status values.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusStopped
	StatusFailed
)

var statusNames = map[Status]string{
	StatusIdle:    "idle",
	StatusRunning: "running",
	StatusPaused:  "paused",
	StatusStopped: "stopped",
	StatusFailed:  "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Snapshot is a consistent copy of the published data.
type Snapshot struct {
	Trace  []string // oldest line first
	State  machine.State
	Status Status
	Err    error // error that stopped the emulation loop
}

// Record is the shared, lock guarded snapshot record.
type Record struct {
	mu sync.Mutex

	capacity int
	trace    []string
	state    machine.State
	running  bool
	paused   bool
	finished bool
	err      error
}

// New returns an idle record keeping up to capacity trace lines.
func New(capacity int) *Record {
	if capacity <= 0 {
		capacity = DefaultTraceCapacity
	}
	return &Record{
		capacity: capacity,
		trace:    make([]string, 0, capacity),
	}
}

// Reset clears the trace, stores the initial machine state and marks the
// record as running. The pause flag is kept.
func (r *Record) Reset(state *machine.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trace = r.trace[:0]
	r.state = *state
	r.running = true
	r.finished = false
	r.err = nil
}

// Publish appends the trace line of an executed instruction and stores a copy
// of the machine state after it. Once the program ended in a self jump,
// repetitions of the last line are not appended.
func (r *Record) Publish(line string, state *machine.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = *state

	if state.EndLoop && len(r.trace) > 0 && r.trace[len(r.trace)-1] == line {
		return
	}

	if len(r.trace) == r.capacity {
		copy(r.trace, r.trace[1:])
		r.trace = r.trace[:len(r.trace)-1]
	}
	r.trace = append(r.trace, line)
}

// SetPaused sets the pause flag.
func (r *Record) SetPaused(paused bool) {
	r.mu.Lock()
	r.paused = paused
	r.mu.Unlock()
}

// Paused returns the pause flag.
func (r *Record) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Finish marks the emulation loop as ended, a non nil error marks it as
// failed.
func (r *Record) Finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.finished = true
	r.err = err
}

// Read returns a copy of the published data.
func (r *Record) Read() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	trace := make([]string, len(r.trace))
	copy(trace, r.trace)

	return Snapshot{
		Trace:  trace,
		State:  r.state,
		Status: r.status(),
		Err:    r.err,
	}
}

func (r *Record) status() Status {
	switch {
	case r.finished && r.err != nil:
		return StatusFailed
	case r.finished:
		return StatusStopped
	case r.running && r.paused:
		return StatusPaused
	case r.running:
		return StatusRunning
	default:
		return StatusIdle
	}
}
