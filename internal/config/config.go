// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// EmulatorConfig returns the emulator settings for the program options.
func EmulatorConfig(opts options.Program) emulator.Config {
	cfg := emulator.DefaultConfig()
	if opts.InstructionRate > 0 {
		cfg.InstructionRate = uint32(opts.InstructionRate)
	}
	if opts.FrameRate > 0 {
		cfg.FrameRate = uint32(opts.FrameRate)
	}
	return cfg
}

// KeyMap returns the key map set in the options or the default key map.
func KeyMap(opts options.Program) (keypad.KeyMap, error) {
	if opts.KeyMap == "" {
		return keypad.DefaultKeyMap(), nil
	}

	km, err := keypad.ParseKeyMap(opts.KeyMap)
	if err != nil {
		return km, fmt.Errorf("parsing key map: %w", err)
	}
	return km, nil
}
