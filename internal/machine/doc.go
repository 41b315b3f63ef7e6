// Package machine implements the CHIP-8 virtual machine core.
//
// # Memory Layout
//
// The machine has 4KB of memory (0x000-0xFFF):
//   - 0x000-0x04F: font sprites for the hexadecimal digits 0-F, 5 bytes each
//   - 0x050-0x1FF: unused interpreter area
//   - ProgramStart-0xFFF: program image and data
//
// # Execution
//
// Step fetches the big-endian instruction at PC, advances PC by 2 and then
// applies the instruction. Instructions that set PC explicitly overwrite the
// advanced value. Every executed instruction produces a Result that renders
// as a one line trace entry:
//
//	0200: 6A12 - Moving 0x12 into VA
//
// All 8 and 16 bit register arithmetic wraps around. Unknown instructions are
// executed as no-ops. Stack overflows and underflows, as well as memory or key
// accesses outside of their valid ranges, stop the step with an error wrapping
// one of the exported sentinel errors.
//
// # Collaborators
//
// The machine owns its framebuffer and keypad. It does not know about host
// windows, keyboards or clocks; the emulator package drives Step and
// TickTimers at their respective rates and forwards key presses.
package machine
