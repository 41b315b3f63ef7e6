package machine

import (
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
)

// Machine is a CHIP-8 virtual machine with its framebuffer and keypad.
type Machine struct {
	State   State
	Display *display.Framebuffer
	Keypad  *keypad.Keypad

	random func() byte
}

// Option configures a machine.
type Option func(*Machine)

// WithRandom sets the random byte source used by the RND instruction.
func WithRandom(random func() byte) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// New returns a machine in power on state with the program loaded at
// ProgramStart.
func New(program []byte, options ...Option) (*Machine, error) {
	if len(program) > MaxProgramSize {
		return nil, fmt.Errorf("program size %d bytes, maximum %d: %w",
			len(program), MaxProgramSize, ErrProgramTooLarge)
	}

	m := &Machine{
		State:   NewState(),
		Display: display.New(),
		Keypad:  keypad.New(),
		random: func() byte {
			return byte(rand.UintN(256))
		},
	}
	copy(m.State.Memory[ProgramStart:], program)

	for _, option := range options {
		option(m)
	}
	return m, nil
}

// TickTimers decrements the delay and sound timers, they stop at 0.
func (m *Machine) TickTimers() {
	if m.State.DelayTimer > 0 {
		m.State.DelayTimer--
	}
	if m.State.SoundTimer > 0 {
		m.State.SoundTimer--
	}
}

// Waiting returns whether execution is blocked by a key wait instruction.
func (m *Machine) Waiting() bool {
	_, waiting := m.Keypad.Waiting()
	return waiting
}

// ResolveKeyWait stores the pressed key in the register of a pending key
// wait and unblocks execution. It returns false if no key wait is pending.
func (m *Machine) ResolveKeyWait(key uint8) bool {
	if key >= keypad.Count {
		return false
	}
	register, ok := m.Keypad.Resolve()
	if !ok {
		return false
	}
	m.State.V[register] = key
	return true
}

// Result describes an executed instruction.
type Result struct {
	Address     uint16 // address that the instruction was fetched from
	Opcode      uint16
	Mnemonic    string
	Description string
}

// String returns the trace line of the executed instruction.
func (r Result) String() string {
	return fmt.Sprintf("%04X: %04X - %s", r.Address, r.Opcode, r.Description)
}
