// Package pipeline orchestrates the emulation workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/clock"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/headless"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/monitor"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/window"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

const windowTitle = "retrochip8"

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	stdin    io.Reader
	stdout   io.Writer
}

// New creates a new emulation pipeline. The terminal display and the monitor
// use stdin and stdout.
func New(logger *log.Logger, stdin io.Reader, stdout io.Writer) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		stdin:    stdin,
		stdout:   stdout,
	}
}

// run is the part of the workflow that depends on the display backend.
type run struct {
	program []byte
	keymap  keypad.KeyMap
	cfg     emulator.Config
	opts    options.Program
}

// Execute loads the program, runs it on the selected display until the
// program fails, the host quits or the context is canceled and returns the
// final snapshot.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (snapshot.Snapshot, error) {
	system, err := p.detector.Detect(opts)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("detecting system: %w", err)
	}

	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("loading program: %w", err)
	}

	keymap, err := config.KeyMap(opts)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	r := run{
		program: program,
		keymap:  keymap,
		cfg:     config.EmulatorConfig(opts),
		opts:    opts,
	}
	p.printInfo(r, system)

	var emu *emulator.Emulator
	switch opts.Display {
	case options.DisplayHeadless:
		emu, err = p.runHeadless(ctx, r)
	case options.DisplayTerminal:
		emu, err = p.runTerminal(ctx, r)
	case options.DisplayWindow:
		emu, err = p.runWindow(ctx, r)
	default:
		return snapshot.Snapshot{}, fmt.Errorf("unsupported display '%s'", opts.Display)
	}
	if emu == nil {
		return snapshot.Snapshot{}, err
	}

	snap := emu.Snapshot()
	if opts.Trace {
		if traceErr := p.writeTrace(snap); traceErr != nil {
			err = errors.Join(err, traceErr)
		}
	}
	return snap, err
}

func (p *Pipeline) runHeadless(ctx context.Context, r run) (*emulator.Emulator, error) {
	h := headless.New(r.opts.Frames)
	emu, err := p.start(h, r)
	if err != nil {
		return nil, err
	}
	return emu, p.wait(ctx, emu, r.opts.Monitor)
}

func (p *Pipeline) runTerminal(ctx context.Context, r run) (emu *emulator.Emulator, err error) {
	t := terminal.New(p.stdin, p.stdout)
	if f, ok := p.stdin.(*os.File); ok {
		if err := t.MakeRaw(int(f.Fd())); err != nil {
			return nil, err
		}
	}
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if err := t.Start(); err != nil {
		return nil, err
	}

	emu, err = p.start(t, r)
	if err != nil {
		return nil, err
	}
	return emu, p.wait(ctx, emu, false)
}

// runWindow runs the window on the calling goroutine, which has to be the
// main goroutine, and waits for the emulation in the background.
func (p *Pipeline) runWindow(ctx context.Context, r run) (*emulator.Emulator, error) {
	w := window.New(windowTitle, r.opts.Scale)
	emu, err := p.start(w, r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var group errgroup.Group
	group.Go(func() error {
		defer w.Close()
		return p.wait(ctx, emu, r.opts.Monitor)
	})

	runErr := w.Run()
	cancel()
	return emu, errors.Join(runErr, group.Wait())
}

func (p *Pipeline) start(h host.Host, r run) (*emulator.Emulator, error) {
	source := clock.NewMonotonic(clock.DefaultIdle)
	emu := emulator.New(p.logger, h, source, r.cfg)
	if err := emu.Start(r.program, r.keymap); err != nil {
		return nil, fmt.Errorf("starting emulator: %w", err)
	}
	return emu, nil
}

// wait blocks until the emulation ended, the context is canceled or the
// monitor quit command was entered. It stops the emulation and returns the
// error that ended it.
func (p *Pipeline) wait(ctx context.Context, emu *emulator.Emulator, withMonitor bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if withMonitor {
		mon := monitor.New(emu, p.stdin, p.stdout)
		go func() {
			quit, err := mon.Run(ctx)
			if err != nil {
				p.logger.Error("Monitor failed", log.Err(err))
			}
			if quit {
				cancel()
			}
		}()
	}

	select {
	case <-ctx.Done():
		p.logger.Debug("Stopping emulation")
	case <-emu.Done():
	}

	if err := emu.Stop(); err != nil {
		return fmt.Errorf("emulating: %w", err)
	}
	return nil
}

func (p *Pipeline) writeTrace(snap snapshot.Snapshot) error {
	if err := monitor.WriteTrace(p.stdout, snap.Trace); err != nil {
		return err
	}
	return monitor.WriteState(p.stdout, snap)
}

// printInfo prints information about the program being run.
func (p *Pipeline) printInfo(r run, system arch.System) {
	if r.opts.Quiet {
		return
	}

	p.logger.Info("Running program",
		log.String("file", r.opts.Input),
		log.Stringer("system", system),
		log.Int("size", len(r.program)),
		log.String("display", r.opts.Display),
		log.Int("ips", int(r.cfg.InstructionRate)),
		log.Int("fps", int(r.cfg.FrameRate)))
}
