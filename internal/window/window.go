// Package window provides a host that renders the framebuffer in a desktop
// window and reads the keyboard using ebiten.
package window

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keypad"
)

var _ host.Host = (*Window)(nil)

const bytesPerPixel = 4

// Pixel colors as RGBA.
var (
	colorOn  = [bytesPerPixel]byte{0xFF, 0xFF, 0xFF, 0xFF}
	colorOff = [bytesPerPixel]byte{0x00, 0x00, 0x00, 0xFF}
)

// Window is an ebiten game that displays the last rendered framebuffer and
// queues keyboard events for the emulation loop. Run must be called from the
// main goroutine, Render and PollEvents are called from the emulation loop.
type Window struct {
	title string
	scale int

	mu     sync.Mutex
	pixels []byte
	events []host.Event

	image     *ebiten.Image
	closed    chan struct{}
	closeOnce sync.Once
}

// New returns a window host with the given title, scale is the size of one
// framebuffer pixel in window pixels.
func New(title string, scale int) *Window {
	w := &Window{
		title:  title,
		scale:  scale,
		pixels: make([]byte, display.Size*bytesPerPixel),
		closed: make(chan struct{}),
	}
	for i := range display.Size {
		copy(w.pixels[i*bytesPerPixel:], colorOff[:])
	}
	return w
}

// Run opens the window and blocks until it is closed by the user or by Close.
func (w *Window) Run() error {
	ebiten.SetWindowSize(display.Width*w.scale, display.Height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Close makes Run return on the next window update.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		close(w.closed)
	})
}

// PollEvents returns the queued keyboard and window events.
func (w *Window) PollEvents() []host.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	events := w.events
	w.events = nil
	return events
}

// Render converts the framebuffer to RGBA pixels for the next window draw.
func (w *Window) Render(fb *display.Framebuffer) error {
	cells := fb.Cells()

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, cell := range cells {
		color := colorOff
		if cell != 0 {
			color = colorOn
		}
		copy(w.pixels[i*bytesPerPixel:], color[:])
	}
	return nil
}

// Update implements ebiten.Game, it queues key edges and quit requests.
func (w *Window) Update() error {
	select {
	case <-w.closed:
		return ebiten.Termination
	default:
	}

	var events []host.Event
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		events = append(events, host.Event{Kind: host.Quit})
	}

	for key, code := range hostKeys {
		if inpututil.IsKeyJustPressed(key) {
			events = append(events, host.Event{Kind: host.KeyDown, Code: code})
		}
		if inpututil.IsKeyJustReleased(key) {
			events = append(events, host.Event{Kind: host.KeyUp, Code: code})
		}
	}

	if len(events) > 0 {
		w.mu.Lock()
		w.events = append(w.events, events...)
		w.mu.Unlock()
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(display.Width, display.Height)
	}

	w.mu.Lock()
	w.image.WritePixels(w.pixels)
	w.mu.Unlock()

	screen.DrawImage(w.image, nil)
}

// Layout implements ebiten.Game, the screen has the framebuffer resolution
// and is scaled to the window size by ebiten.
func (w *Window) Layout(_, _ int) (int, int) {
	return display.Width, display.Height
}

// hostKeys maps the ebiten keys to the key codes used in key maps.
var hostKeys = map[ebiten.Key]keypad.KeyCode{
	ebiten.Key0: '0', ebiten.Key1: '1', ebiten.Key2: '2', ebiten.Key3: '3',
	ebiten.Key4: '4', ebiten.Key5: '5', ebiten.Key6: '6', ebiten.Key7: '7',
	ebiten.Key8: '8', ebiten.Key9: '9',
	ebiten.KeyA: 'A', ebiten.KeyB: 'B', ebiten.KeyC: 'C', ebiten.KeyD: 'D',
	ebiten.KeyE: 'E', ebiten.KeyF: 'F', ebiten.KeyG: 'G', ebiten.KeyH: 'H',
	ebiten.KeyI: 'I', ebiten.KeyJ: 'J', ebiten.KeyK: 'K', ebiten.KeyL: 'L',
	ebiten.KeyM: 'M', ebiten.KeyN: 'N', ebiten.KeyO: 'O', ebiten.KeyP: 'P',
	ebiten.KeyQ: 'Q', ebiten.KeyR: 'R', ebiten.KeyS: 'S', ebiten.KeyT: 'T',
	ebiten.KeyU: 'U', ebiten.KeyV: 'V', ebiten.KeyW: 'W', ebiten.KeyX: 'X',
	ebiten.KeyY: 'Y', ebiten.KeyZ: 'Z',
	ebiten.KeyComma: ',', ebiten.KeyPeriod: '.', ebiten.KeySlash: '/',
	ebiten.KeySemicolon: ';', ebiten.KeyMinus: '-', ebiten.KeyEqual: '=',
}
