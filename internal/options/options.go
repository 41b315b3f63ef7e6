// Package options contains the program options.
package options

// Display backends.
const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"
)

// DefaultScale is the default number of window pixels per CHIP-8 pixel.
const DefaultScale = 12

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"CHIP-8 program to run"`
}

// Parameters contains the input and host options.
type Parameters struct {
	Input   string `flag:"i" usage:"CHIP-8 program file"`
	System  string `flag:"s" usage:"target system, only chip8 is supported (default: auto-detect)"`
	Display string `flag:"display" usage:"display backend: window, terminal, headless" default:"window"`
	KeyMap  string `flag:"keymap" usage:"16 host keys for the CHIP-8 keys 0-F (default: X123QWEASDZC4RFV)"`
	Scale   int    `flag:"scale" usage:"window pixels per CHIP-8 pixel" default:"12"`
}

// Flags contains behavior options.
type Flags struct {
	InstructionRate uint `flag:"ips" usage:"instructions executed per second" default:"500"`
	FrameRate       uint `flag:"fps" usage:"timer decrements and rendered frames per second" default:"60"`
	Frames          int  `flag:"frames" usage:"number of frames to run in headless mode, 0 runs until interrupted"`
	Monitor         bool `flag:"monitor" usage:"read monitor commands from stdin"`
	Trace           bool `flag:"trace" usage:"print the trace and machine state on exit"`
	Debug           bool `flag:"debug" usage:"enable debug logging"`
	Quiet           bool `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}
