// Package display provides the CHIP-8 monochrome framebuffer.
//
// The framebuffer is a 64x32 grid of binary pixels. It is only modified by the
// clear screen instruction and by sprite draws, which XOR sprite rows onto the
// grid with toroidal wrapping of both coordinates.
package display

const (
	// Width is the number of horizontal pixels.
	Width = 64
	// Height is the number of vertical pixels.
	Height = 32
	// Size is the number of cells of the framebuffer.
	Size = Width * Height

	// spriteWidth is the number of pixels encoded in one sprite byte.
	spriteWidth = 8
)

// Framebuffer is the 64x32 pixel grid. Every cell is either 0 or 1.
type Framebuffer struct {
	cells [Size]uint8
}

// New returns a cleared framebuffer.
func New() *Framebuffer {
	return &Framebuffer{}
}

// Clear resets all cells to 0.
func (f *Framebuffer) Clear() {
	f.cells = [Size]uint8{}
}

// Pixel returns the cell value at the given position. Coordinates wrap around
// the screen edges.
func (f *Framebuffer) Pixel(x, y int) uint8 {
	return f.cells[index(x, y)]
}

// Cells returns a copy of all cells in row-major order.
func (f *Framebuffer) Cells() [Size]uint8 {
	return f.cells
}

// Draw XORs the sprite rows onto the framebuffer with the top left corner at
// x, y. Each row byte encodes 8 pixels, most significant bit first. Cells that
// fall outside the screen wrap to the opposite edge. It returns whether any
// touched cell was set before the draw.
func (f *Framebuffer) Draw(x, y int, rows []byte) bool {
	var collision uint8

	for row, data := range rows {
		for column := range spriteWidth {
			if data&(0x80>>column) == 0 {
				continue
			}

			i := index(x+column, y+row)
			collision = max(collision, f.cells[i])
			f.cells[i] ^= 1
		}
	}

	return collision == 1
}

func index(x, y int) int {
	x %= Width
	if x < 0 {
		x += Width
	}
	y %= Height
	if y < 0 {
		y += Height
	}
	return x + y*Width
}
