// Package emulator runs the CHIP-8 machine in its own goroutine and provides
// the control surface used by observers.
//
// The emulation loop samples a millisecond tick counter once per iteration and
// drives two independent gates: the instruction gate executes at most one
// instruction per firing, the frame gate decrements the timers, polls host
// events and hands the framebuffer to the host. Pausing suppresses
// instruction execution and timer decrements, but frames are still rendered
// and quit requests are still handled.
package emulator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/retroenv/retrochip8/internal/clock"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Default clock rates in Hz.
const (
	DefaultInstructionRate = 500
	DefaultFrameRate       = 60
)

// ErrAlreadyStarted is returned when starting an emulator that is running.
var ErrAlreadyStarted = errors.New("emulator already started")

// Config contains the emulator settings.
type Config struct {
	InstructionRate uint32 // instructions per second
	FrameRate       uint32 // timer decrements and rendered frames per second
	TraceCapacity   int    // number of trace lines kept in the snapshot

	MachineOptions []machine.Option
}

// DefaultConfig returns the default emulator settings.
func DefaultConfig() Config {
	return Config{
		InstructionRate: DefaultInstructionRate,
		FrameRate:       DefaultFrameRate,
		TraceCapacity:   snapshot.DefaultTraceCapacity,
	}
}

// Emulator controls the emulation goroutine.
type Emulator struct {
	logger *log.Logger
	host   host.Host
	clock  clock.Source
	cfg    Config
	record *snapshot.Record

	mu      sync.Mutex
	started bool
	group   *errgroup.Group
	stop    chan struct{}
	done    chan struct{}
}

// New returns an emulator that renders to and receives events from the host.
func New(logger *log.Logger, h host.Host, source clock.Source, cfg Config) *Emulator {
	done := make(chan struct{})
	close(done)

	return &Emulator{
		logger: logger,
		host:   h,
		clock:  source,
		cfg:    cfg,
		record: snapshot.New(cfg.TraceCapacity),
		done:   done,
	}
}

// session is the state owned by the emulation goroutine.
type session struct {
	machine     *machine.Machine
	keymap      keypad.KeyMap
	instruction *clock.Gate
	frame       *clock.Gate
	paused      bool // pause flag as seen by the last instruction tick
}

// Start creates a machine with the program loaded and starts the emulation
// goroutine. Errors creating the machine are returned before anything runs.
// An emulator whose loop ended on its own has to be stopped before it can be
// started again.
func (e *Emulator) Start(program []byte, keymap keypad.KeyMap) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}

	s, err := e.newSession(program, keymap)
	if err != nil {
		return err
	}

	e.record.Reset(&s.machine.State)
	e.started = true
	e.group = &errgroup.Group{}
	e.stop = make(chan struct{}, 1)
	e.done = make(chan struct{})

	stop, done := e.stop, e.done
	e.group.Go(func() error {
		defer close(done)

		err := e.run(s, stop)
		e.record.Finish(err)
		if err != nil {
			e.logger.Error("Emulation stopped", log.Err(err))
		} else {
			e.logger.Debug("Emulation stopped")
		}
		return err
	})

	e.logger.Debug("Emulation started",
		log.Int("program_size", len(program)),
		log.String("keymap", keymap.String()))
	return nil
}

func (e *Emulator) newSession(program []byte, keymap keypad.KeyMap) (*session, error) {
	instruction, err := clock.NewGate(e.cfg.InstructionRate)
	if err != nil {
		return nil, fmt.Errorf("creating instruction clock: %w", err)
	}
	frame, err := clock.NewGate(e.cfg.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("creating frame clock: %w", err)
	}

	m, err := machine.New(program, e.cfg.MachineOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating machine: %w", err)
	}

	return &session{
		machine:     m,
		keymap:      keymap,
		instruction: instruction,
		frame:       frame,
	}, nil
}

// Pause pauses or resumes the instruction execution.
func (e *Emulator) Pause(paused bool) {
	e.record.SetPaused(paused)
}

// Stop signals the emulation goroutine to end and waits for it. It returns
// the error that ended the emulation, if any. The emulator can be started
// again afterwards.
func (e *Emulator) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil
	}
	group, stop := e.group, e.stop
	e.mu.Unlock()

	select {
	case stop <- struct{}{}:
	default:
	}

	err := group.Wait()

	e.mu.Lock()
	if e.group == group {
		e.started = false
	}
	e.mu.Unlock()
	return err
}

// Done returns a channel that is closed when the emulation goroutine ended.
func (e *Emulator) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Snapshot returns the trace, the machine state after the last executed
// instruction and the run status.
func (e *Emulator) Snapshot() snapshot.Snapshot {
	return e.record.Read()
}
