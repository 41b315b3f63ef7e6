// Package host defines the contract between the emulation loop and the host
// system that renders the framebuffer and delivers keyboard events.
package host

import (
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
)

// EventKind is the type of a host event.
type EventKind uint8

// Host event kinds.
const (
	KeyDown EventKind = iota + 1
	KeyUp
	Quit
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "key down"
	case KeyUp:
		return "key up"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is a keyboard or window event of the host.
type Event struct {
	Kind EventKind
	Code keypad.KeyCode // host key for KeyDown and KeyUp
}

// Host is implemented by the display and input backends. Both methods are
// called from the emulation loop once per frame tick.
type Host interface {
	// PollEvents returns all events that occurred since the last call.
	PollEvents() []Event
	// Render hands the framebuffer to the host for display. The framebuffer
	// must not be retained after the call returns.
	Render(fb *display.Framebuffer) error
}
