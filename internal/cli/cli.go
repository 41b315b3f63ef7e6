// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/clock"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/options"
)

var displays = []string{options.DisplayWindow, options.DisplayTerminal, options.DisplayHeadless}

// ParseFlags parses the command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if len(args) == 0 && opts.Input == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the flag defaults to stdout.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <program.ch8>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("Only one program file can be run, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Display = strings.ToLower(opts.Display)
	valid := false
	for _, display := range displays {
		if opts.Display == display {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported display: %s. Valid options: %s",
			opts.Display, strings.Join(displays, ", "))
	}

	if opts.InstructionRate == 0 || opts.InstructionRate > clock.MaxFrequency {
		return fmt.Errorf("instruction rate %d out of range 1-%d", opts.InstructionRate, clock.MaxFrequency)
	}
	if opts.FrameRate == 0 || opts.FrameRate > clock.MaxFrequency {
		return fmt.Errorf("frame rate %d out of range 1-%d", opts.FrameRate, clock.MaxFrequency)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("invalid window scale %d", opts.Scale)
	}

	// the terminal host reads keys from stdin
	if opts.Monitor && opts.Display == options.DisplayTerminal {
		return fmt.Errorf("monitor can not be used with the %s display", options.DisplayTerminal)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the CHIP-8 program file")
	flags.StringVar(&opts.System, "s", "", "system of the program, only chip8 is supported - if not auto-detected from file extension")
	flags.StringVar(&opts.Display, "display", options.DisplayWindow, "display backend to use (window/terminal/headless)")
	flags.StringVar(&opts.KeyMap, "keymap", "", "16 host keys for the CHIP-8 keys 0 to F, for example X123QWEASDZC4RFV")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window pixels per CHIP-8 pixel")
	flags.UintVar(&opts.InstructionRate, "ips", emulator.DefaultInstructionRate, "instructions executed per second")
	flags.UintVar(&opts.FrameRate, "fps", emulator.DefaultFrameRate, "timer decrements and rendered frames per second")
	flags.IntVar(&opts.Frames, "frames", 0, "number of frames to run in headless mode, 0 runs until interrupted")
	flags.BoolVar(&opts.Monitor, "monitor", false, "read monitor commands from stdin while the program runs")
	flags.BoolVar(&opts.Trace, "trace", false, "print the instruction trace and machine state on exit")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
