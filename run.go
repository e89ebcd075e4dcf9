package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"go.uber.org/zap"

	"github.com/olivier-w/chladni/internal/chl"
	"github.com/olivier-w/chladni/internal/config"
	"github.com/olivier-w/chladni/internal/engine"
	"github.com/olivier-w/chladni/internal/palette"
	"github.com/olivier-w/chladni/internal/pattern"
	"github.com/olivier-w/chladni/internal/render"
	"github.com/olivier-w/chladni/internal/ui"
	"github.com/olivier-w/chladni/internal/util"
)

type app struct {
	cfg         config.Config
	log         *zap.Logger
	opts        options
	interactive bool
	stdout      io.Writer
	stderr      io.Writer

	// runProgram and termSize are replaced in tests.
	runProgram func(m tea.Model, altScreen bool) (tea.Model, error)
	termSize   func() (cols, rows int)
}

func defaultRunProgram(m tea.Model, altScreen bool) (tea.Model, error) {
	var opts []tea.ProgramOption
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(m, opts...).Run()
}

func defaultTermSize() (int, int) {
	if cols, rows, err := term.GetSize(os.Stdout.Fd()); err == nil && cols > 0 && rows > 0 {
		return cols, rows
	}
	return config.EnvIntOr("COLUMNS", 80), config.EnvIntOr("LINES", 24)
}

func (a *app) run() int {
	if a.runProgram == nil {
		a.runProgram = defaultRunProgram
	}
	if a.termSize == nil {
		a.termSize = defaultTermSize
	}

	if a.opts.output != "" {
		if _, err := render.FormatFromPath(a.opts.output); err != nil {
			a.fail(err)
			return exitUsage
		}
	}

	sim := engine.New(engine.WithConfig(a.cfg), engine.WithLogger(a.log))

	path := a.opts.input
	if path == "" {
		if !a.interactive {
			a.fail(errors.New("no input file given (run on a terminal to pick one)"))
			return exitUsage
		}
		chosen, ok, err := a.browse(sim)
		if err != nil {
			a.fail(err)
			return exitFailure
		}
		if !ok {
			return exitOK
		}
		path = chosen
	} else if err := openDocument(sim, path); err != nil {
		a.fail(err)
		return exitFailure
	}

	a.printf("Loaded %s: %d waves, %dx%d, palette %s, normalize %v\n",
		path, sim.Capacity(), sim.Width(), sim.Height(), sim.Palette(), sim.Normalize())

	res, err := a.compute(sim, filepath.Base(path))
	if err != nil {
		a.fail(err)
		return exitFailure
	}
	if !res.Completed {
		a.fail(errors.New("computation canceled, nothing written"))
		return exitCanceled
	}

	st := sim.Stats()
	a.printf("%s computed in %s: peak %.2f, mean %.2f, stddev %.2f\n",
		ui.SuccessStyle.Render("✓"), util.FormatElapsed(res.Elapsed), res.Peak, st.Mean, st.StdDev)

	var bmp *render.Bitmap
	if a.opts.output != "" || a.opts.preview {
		bmp = a.bitmap(sim)
	}

	if a.opts.output != "" {
		if err := bmp.WriteFile(a.opts.output); err != nil {
			a.fail(fmt.Errorf("write image: %w", err))
			return exitFailure
		}
		a.printf("%s image written to %s (%dx%d)\n", ui.SuccessStyle.Render("✓"), a.opts.output, bmp.Width, bmp.Height)
	}

	if a.opts.save != "" {
		if err := sim.Save(a.opts.save, true); err != nil {
			a.fail(err)
			return exitFailure
		}
		a.printf("%s document saved to %s\n", ui.SuccessStyle.Render("✓"), a.opts.save)
	}

	if a.opts.preview {
		cols, rows := a.termSize()
		mode := render.ColorOff
		if a.interactive {
			mode = render.DetectColorMode()
		}
		fmt.Fprintln(a.stdout, render.Preview(bmp, cols, max(rows-2, 1), mode))
	}
	return exitOK
}

// bitmap renders with the palette picked on the command line, or the
// document's own. The document's palette is never changed, so a saved copy
// keeps it.
func (a *app) bitmap(sim *engine.Simulator) *render.Bitmap {
	if !a.opts.hasPalette {
		return sim.Bitmap()
	}
	cm := palette.NewColorMap(a.opts.palette.Palette())
	return render.Render(sim.Grid(), cm, sim.Peak(), sim.Normalize())
}

func (a *app) compute(sim *engine.Simulator, title string) (ui.ComputeResult, error) {
	if a.interactive && !a.opts.noProgress {
		m := ui.NewCompute(title, sim.RecalculateWithProgress)
		final, err := a.runProgram(m, false)
		if errors.Is(err, tea.ErrInterrupted) {
			m.Canceler().Cancel()
			return ui.ComputeResult{}, nil
		}
		if err != nil {
			m.Canceler().Cancel()
			return ui.ComputeResult{}, err
		}
		cm, ok := final.(ui.ComputeModel)
		if !ok {
			return ui.ComputeResult{}, fmt.Errorf("unexpected model type from compute view")
		}
		return cm.Result(), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	peak, completed := sim.Recalculate(pattern.ContextCanceler(ctx))
	return ui.ComputeResult{Peak: peak, Completed: completed, Elapsed: time.Since(start)}, nil
}

func (a *app) browse(sim *engine.Simulator) (string, bool, error) {
	m := newStartupModel(func(path string) error {
		return openDocument(sim, path)
	})
	final, err := a.runProgram(m, true)
	if err != nil {
		return "", false, err
	}
	sm, ok := final.(startupModel)
	if !ok {
		return "", false, fmt.Errorf("unexpected model type from browser")
	}
	path, ok := sm.Result()
	return path, ok, nil
}

// openDocument checks path the way a user would expect before handing it
// to the simulator.
func openDocument(sim *engine.Simulator, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if !chl.IsDocumentPath(path) {
		return fmt.Errorf("unsupported file %s (expected %s)", filepath.Base(path), chl.Ext)
	}
	return sim.Load(path)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func (a *app) fail(err error) {
	a.log.Debug("command failed", zap.Error(err))
	fmt.Fprintln(a.stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
}
