// Package loader handles program file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw CHIP-8 program image. Programs that do not fit into the
// memory between the program start address and the end of memory are
// rejected.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file info of %s: %w", path, err)
	}
	size := int(info.Size())
	if size > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d bytes",
			machine.ErrProgramTooLarge, size, machine.MaxProgramSize)
	}

	// program images have no header, the whole file is the program.
	// The buffer is padded to full PRG banks.
	cart, err := cartridge.LoadBuffer(file)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return cart.PRG[:size], nil
}
