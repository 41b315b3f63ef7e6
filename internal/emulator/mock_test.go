package emulator

import (
	"errors"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
)

// fakeClock advances by one millisecond on every loop iteration.
type fakeClock struct {
	ticks uint32
}

func (c *fakeClock) Ticks() uint32 {
	return c.ticks
}

func (c *fakeClock) Wait() {
	c.ticks++
}

// fakeHost returns scripted events per polled frame.
type fakeHost struct {
	polls     int
	renders   int
	quitAfter int
	events    map[int][]host.Event
	onPoll    func(poll int)
	renderErr error
}

var errRender = errors.New("render failed")

func (h *fakeHost) PollEvents() []host.Event {
	h.polls++
	if h.onPoll != nil {
		h.onPoll(h.polls)
	}
	if h.quitAfter > 0 && h.polls > h.quitAfter {
		return []host.Event{{Kind: host.Quit}}
	}
	return h.events[h.polls]
}

func (h *fakeHost) Render(*display.Framebuffer) error {
	h.renders++
	return h.renderErr
}
