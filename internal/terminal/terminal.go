// Package terminal provides a host that draws the framebuffer with block
// characters and reads single key presses from a raw mode terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keypad"
	"golang.org/x/term"
)

var _ host.Host = (*Terminal)(nil)

// DefaultHoldTime is how long a key counts as held after its last byte was
// read. Terminals only report key presses, releases are synthesized.
const DefaultHoldTime = 150 * time.Millisecond

// DefaultRetapGap is the shortest time between two bytes of a held key that
// counts as a new key press. Terminal auto repeat sends bytes faster.
const DefaultRetapGap = 60 * time.Millisecond

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B

	escapeHome       = "\x1b[H"
	escapeClear      = "\x1b[2J"
	escapeHideCursor = "\x1b[?25l"
	escapeShowCursor = "\x1b[?25h"
)

// Terminal is a host that reads key bytes in a background goroutine and
// writes every rendered frame as text.
type Terminal struct {
	in   io.Reader
	out  io.Writer
	hold  time.Duration
	retap time.Duration
	now   func() time.Time

	fd       int
	oldState *term.State

	mu      sync.Mutex
	pending []host.Event
	held    map[keypad.KeyCode]time.Time // key code to release time
	quit    bool

	frame    []byte
	started  bool
	readDone chan struct{}
}

// Option configures a terminal host.
type Option func(*Terminal)

// WithHoldTime sets the time after which a key without new input is released.
func WithHoldTime(hold time.Duration) Option {
	return func(t *Terminal) {
		t.hold = hold
	}
}

// WithRetapGap sets the shortest time between two bytes of a held key that
// is reported as a release followed by a new press.
func WithRetapGap(gap time.Duration) Option {
	return func(t *Terminal) {
		t.retap = gap
	}
}

// WithClock sets the function that returns the current time.
func WithClock(now func() time.Time) Option {
	return func(t *Terminal) {
		t.now = now
	}
}

// New returns a terminal host that reads keys from in and draws to out.
func New(in io.Reader, out io.Writer, options ...Option) *Terminal {
	t := &Terminal{
		in:       in,
		out:      out,
		hold:     DefaultHoldTime,
		retap:    DefaultRetapGap,
		now:      time.Now,
		fd:       -1,
		held:     map[keypad.KeyCode]time.Time{},
		readDone: make(chan struct{}),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// MakeRaw puts the terminal of the file descriptor into raw mode, so that key
// presses are delivered without echo and line buffering. It does nothing if
// the descriptor is not a terminal.
func (t *Terminal) MakeRaw(fd int) error {
	if !term.IsTerminal(fd) {
		return nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting terminal raw mode: %w", err)
	}
	t.fd = fd
	t.oldState = state
	return nil
}

// Start clears the screen and starts reading key bytes.
func (t *Terminal) Start() error {
	if t.started {
		return nil
	}
	t.started = true

	if _, err := io.WriteString(t.out, escapeClear+escapeHideCursor); err != nil {
		return fmt.Errorf("writing terminal setup: %w", err)
	}

	go t.read()
	return nil
}

// Close restores the terminal mode and shows the cursor again. The reader
// goroutine ends with the next byte or the end of the input.
func (t *Terminal) Close() error {
	var errs []error
	if _, err := io.WriteString(t.out, escapeShowCursor+"\r\n"); err != nil {
		errs = append(errs, fmt.Errorf("writing terminal reset: %w", err))
	}
	if t.oldState != nil {
		if err := term.Restore(t.fd, t.oldState); err != nil {
			errs = append(errs, fmt.Errorf("restoring terminal mode: %w", err))
		}
		t.oldState = nil
	}
	return errors.Join(errs...)
}

func (t *Terminal) read() {
	defer close(t.readDone)

	buf := make([]byte, 16)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.handleInput(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// handleInput converts the bytes of one read into events. A lone escape byte
// quits, escape sequences of special keys are ignored.
func (t *Terminal) handleInput(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(b) == 1 && b[0] == keyEscape {
		t.requestQuit()
		return
	}

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == keyCtrlC:
			t.requestQuit()
			return

		case c == keyEscape:
			return

		case c < 0x20 || c >= 0x7F:
			continue
		}

		code := keypad.NormalizeKeyCode(rune(c))
		now := t.now()
		release, held := t.held[code]
		switch {
		case !held:
			t.pending = append(t.pending, host.Event{Kind: host.KeyDown, Code: code})

		case now.Sub(release.Add(-t.hold)) >= t.retap:
			// tapped again while still held
			t.pending = append(t.pending,
				host.Event{Kind: host.KeyUp, Code: code},
				host.Event{Kind: host.KeyDown, Code: code})
		}
		t.held[code] = now.Add(t.hold)
	}
}

func (t *Terminal) requestQuit() {
	if t.quit {
		return
	}
	t.quit = true
	t.pending = append(t.pending, host.Event{Kind: host.Quit})
}

// PollEvents returns the key presses read since the last call and releases
// keys whose hold time expired.
func (t *Terminal) PollEvents() []host.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := t.pending
	t.pending = nil

	now := t.now()
	for code, release := range t.held {
		if now.Before(release) {
			continue
		}
		delete(t.held, code)
		events = append(events, host.Event{Kind: host.KeyUp, Code: code})
	}
	return events
}

// Render draws the framebuffer using half block characters, every text line
// shows two pixel rows.
func (t *Terminal) Render(fb *display.Framebuffer) error {
	t.frame = appendFrame(t.frame[:0], fb)

	w := bufio.NewWriter(t.out)
	_, _ = w.WriteString(escapeHome)
	_, _ = w.Write(t.frame)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func appendFrame(buf []byte, fb *display.Framebuffer) []byte {
	for y := 0; y < display.Height; y += 2 {
		for x := range display.Width {
			top := fb.Pixel(x, y) != 0
			bottom := fb.Pixel(x, y+1) != 0

			switch {
			case top && bottom:
				buf = append(buf, "█"...)
			case top:
				buf = append(buf, "▀"...)
			case bottom:
				buf = append(buf, "▄"...)
			default:
				buf = append(buf, ' ')
			}
		}
		buf = append(buf, '\r', '\n')
	}
	return buf
}
