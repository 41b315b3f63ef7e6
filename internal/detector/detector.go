// Package detector handles system architecture detection.
package detector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// Detector checks that a program file targets the CHIP-8 system.
type Detector struct {
	logger *log.Logger
}

// New creates a new system detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the system of the program from the options or the file
// extension and returns an error for systems that can not be run.
func (d *Detector) Detect(opts options.Program) (arch.System, error) {
	var system arch.System
	if opts.System != "" {
		system, _ = arch.SystemFromString(opts.System)
		if system == "" {
			return "", fmt.Errorf("unknown system '%s'", opts.System)
		}
	} else {
		system = d.detectFromFile(opts.Input)
		d.logger.Debug("Auto-detected system",
			log.Stringer("system", system),
			log.String("file", opts.Input))
	}

	if system != arch.CHIP8System {
		return "", fmt.Errorf("unsupported system '%s', only '%s' programs can be run", system, arch.CHIP8System)
	}
	return system, nil
}

// detectFromFile determines the system type based on file extension.
func (d *Detector) detectFromFile(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".nes":
		return arch.NES
	default:
		// .ch8, .c8 and .rom files as well as unknown extensions
		return arch.CHIP8System
	}
}
