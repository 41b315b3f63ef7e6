// Package headless provides a host without display or keyboard that ends the
// emulation after a fixed number of frames.
package headless

import (
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
)

var _ host.Host = (*Headless)(nil)

// Headless is a host that counts frames. With a frame limit it requests the
// emulation to quit once the limit is reached.
type Headless struct {
	limit  int
	polls  int
	frames int
	last   [display.Size]uint8
}

// New returns a headless host that quits after limit frames, a limit of 0
// runs until the emulation is stopped otherwise.
func New(limit int) *Headless {
	return &Headless{
		limit: limit,
	}
}

// PollEvents returns a quit event once the frame limit is reached.
func (h *Headless) PollEvents() []host.Event {
	h.polls++
	if h.limit > 0 && h.polls > h.limit {
		return []host.Event{{Kind: host.Quit}}
	}
	return nil
}

// Render keeps a copy of the framebuffer.
func (h *Headless) Render(fb *display.Framebuffer) error {
	h.frames++
	h.last = fb.Cells()
	return nil
}

// Frames returns the number of rendered frames.
func (h *Headless) Frames() int {
	return h.frames
}

// LastFrame returns the cells of the last rendered framebuffer.
func (h *Headless) LastFrame() [display.Size]uint8 {
	return h.last
}
