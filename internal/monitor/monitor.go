// Package monitor implements a line based console that controls a running
// emulation and prints its snapshot.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/snapshot"
)

const prompt = "> "

// Controller is the control surface of the emulation used by the monitor.
type Controller interface {
	Pause(paused bool)
	Snapshot() snapshot.Snapshot
}

type command struct {
	names   []string
	args    string
	help    string
	handler func(m *Monitor, args []string) (quit bool, err error)
}

var commands []command

func init() {
	commands = []command{
		{names: []string{"pause", "p"}, help: "pause the instruction execution", handler: (*Monitor).pause},
		{names: []string{"resume", "r"}, help: "resume the instruction execution", handler: (*Monitor).resume},
		{names: []string{"state", "s"}, help: "print the registers, timers and run status", handler: (*Monitor).state},
		{names: []string{"trace", "t"}, args: "[n]", help: "print the last n trace lines", handler: (*Monitor).trace},
		{names: []string{"quit", "q"}, help: "stop the emulation", handler: (*Monitor).quit},
		{names: []string{"help", "h"}, help: "print this help", handler: (*Monitor).help},
	}
}

// Monitor reads commands from an input and writes the results to an output.
type Monitor struct {
	ctrl Controller
	in   io.Reader
	out  io.Writer
}

// New returns a monitor for the controller.
func New(ctrl Controller, in io.Reader, out io.Writer) *Monitor {
	return &Monitor{
		ctrl: ctrl,
		in:   in,
		out:  out,
	}
}

// Run processes commands until the quit command is entered, the input ends
// or the context is canceled. It returns true if the quit command was used.
func (m *Monitor) Run(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(m.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if _, err := io.WriteString(m.out, prompt); err != nil {
			return false, fmt.Errorf("writing prompt: %w", err)
		}

		select {
		case <-ctx.Done():
			return false, nil

		case line, ok := <-lines:
			if !ok {
				return false, nil
			}
			quit, err := m.Execute(line)
			if err != nil {
				if _, err := fmt.Fprintf(m.out, "error: %s\n", err); err != nil {
					return false, fmt.Errorf("writing error: %w", err)
				}
			}
			if quit {
				return true, nil
			}
		}
	}
}

// Execute runs a single command line.
func (m *Monitor) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	for _, cmd := range commands {
		for _, n := range cmd.names {
			if n == name {
				return cmd.handler(m, fields[1:])
			}
		}
	}
	return false, fmt.Errorf("unknown command '%s', enter 'help' for a list of commands", fields[0])
}

func (m *Monitor) pause(_ []string) (bool, error) {
	m.ctrl.Pause(true)
	return false, nil
}

func (m *Monitor) resume(_ []string) (bool, error) {
	m.ctrl.Pause(false)
	return false, nil
}

func (m *Monitor) state(_ []string) (bool, error) {
	snap := m.ctrl.Snapshot()
	return false, WriteState(m.out, snap)
}

func (m *Monitor) trace(args []string) (bool, error) {
	snap := m.ctrl.Snapshot()
	n := len(snap.Trace)
	if len(args) > 0 {
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 0 {
			return false, fmt.Errorf("invalid line count '%s'", args[0])
		}
		n = min(i, n)
	}
	return false, WriteTrace(m.out, snap.Trace[len(snap.Trace)-n:])
}

func (m *Monitor) quit(_ []string) (bool, error) {
	return true, nil
}

func (m *Monitor) help(_ []string) (bool, error) {
	for _, cmd := range commands {
		usage := strings.Join(cmd.names, "|")
		if cmd.args != "" {
			usage += " " + cmd.args
		}
		if _, err := fmt.Fprintf(m.out, "  %-12s %s\n", usage, cmd.help); err != nil {
			return false, fmt.Errorf("writing help: %w", err)
		}
	}
	return false, nil
}

// WriteState writes the registers, timers and run status of the snapshot.
func WriteState(w io.Writer, snap snapshot.Snapshot) error {
	st := snap.State

	var sb strings.Builder
	fmt.Fprintf(&sb, "status: %s", snap.Status)
	if snap.Err != nil {
		fmt.Fprintf(&sb, " (%s)", snap.Err)
	}
	fmt.Fprintf(&sb, "\nPC: %04X  I: %04X  SP: %d  DT: %d  ST: %d\n",
		st.PC, st.I, st.SP, st.DelayTimer, st.SoundTimer)

	for i := range machine.RegisterCount {
		fmt.Fprintf(&sb, "V%X: %02X", i, st.V[i])
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteString("  ")
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// WriteTrace writes the trace lines, oldest first.
func WriteTrace(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	return nil
}
