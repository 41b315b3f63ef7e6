package emulator

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrogolib/log"
)

// run is the emulation loop. It returns nil when stopped or when the host
// requests to quit, and an error if the program or the host failed.
func (e *Emulator) run(s *session, stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		now := e.clock.Ticks()

		if s.instruction.Fire(now) {
			if err := e.instructionTick(s); err != nil {
				return err
			}
		}

		if s.frame.Fire(now) {
			quit, err := e.frameTick(s)
			if err != nil {
				return err
			}
			if quit {
				e.logger.Debug("Quit requested by host")
				return nil
			}
		}

		e.clock.Wait()
	}
}

// instructionTick executes one instruction unless the emulation is paused or
// waits for a key press, and publishes the result.
func (e *Emulator) instructionTick(s *session) error {
	s.paused = e.record.Paused()
	if s.paused || s.machine.Waiting() {
		return nil
	}

	res, err := s.machine.Step()
	if err != nil {
		e.logger.Error("Executing instruction failed",
			log.Hex("address", res.Address),
			log.Hex("opcode", res.Opcode),
			log.String("mnemonic", res.Mnemonic))
		return fmt.Errorf("running program: %w", err)
	}

	e.record.Publish(res.String(), &s.machine.State)
	return nil
}

// frameTick handles host events, decrements the timers and renders the
// framebuffer. It returns whether the host requested to quit.
func (e *Emulator) frameTick(s *session) (bool, error) {
	for _, event := range e.host.PollEvents() {
		if event.Kind == host.Quit {
			return true, nil
		}
		e.handleKey(s, event)
	}

	if !s.paused {
		s.machine.TickTimers()
	}

	if err := e.host.Render(s.machine.Display); err != nil {
		return false, fmt.Errorf("rendering frame: %w", err)
	}
	return false, nil
}

// handleKey updates the keypad state. A key press also resolves a pending
// key wait unless the emulation is paused.
func (e *Emulator) handleKey(s *session, event host.Event) {
	key, ok := s.keymap.Index(event.Code)
	if !ok {
		return
	}

	switch event.Kind {
	case host.KeyDown:
		s.machine.Keypad.Press(key)
		if !s.paused && s.machine.ResolveKeyWait(key) {
			e.logger.Debug("Key wait resolved", log.Hex("key", key))
		}

	case host.KeyUp:
		s.machine.Keypad.Release(key)
	}
}
