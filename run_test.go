package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/olivier-w/chladni/internal/chl"
	"github.com/olivier-w/chladni/internal/config"
	"github.com/olivier-w/chladni/internal/palette"
	"github.com/olivier-w/chladni/internal/pattern"
	"github.com/olivier-w/chladni/internal/ui"
)

func writeDocument(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	doc := &chl.Document{
		Waves: []pattern.Wave{
			{Enabled: true, Amplitude: 1, Frequency: 2},
			{Enabled: true, Amplitude: 0.5, Frequency: 5, Phase: 45},
		},
		PaletteIndex: palette.Grayscale.Index(),
		Width:        24,
		Height:       16,
		Normalize:    true,
	}
	if err := chl.Save(path, doc, false); err != nil {
		t.Fatalf("chl.Save() error = %v", err)
	}
	return path
}

func testApp(opts options) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &app{
		cfg:    config.Default(),
		log:    zap.NewNop(),
		opts:   opts,
		stdout: &stdout,
		stderr: &stderr,
		termSize: func() (int, int) {
			return 40, 20
		},
	}, &stdout, &stderr
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseArgs([]string{"-o", "out.png", "--save", "copy.chl", "-c", "grayscale", "-p", "--no-progress", "in.chl"}, config.Default(), &stderr)
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if opts.input != "in.chl" || opts.output != "out.png" || opts.save != "copy.chl" {
		t.Fatalf("paths = %+v", opts)
	}
	if !opts.hasPalette || opts.palette != palette.Grayscale || !opts.preview || !opts.noProgress {
		t.Fatalf("flags = %+v", opts)
	}
	if opts.logLevel != config.DefaultLogLevel {
		t.Fatalf("logLevel = %q, want %q", opts.logLevel, config.DefaultLogLevel)
	}
}

func TestParseArgsErrors(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := parseArgs([]string{"-c", "plasma", "in.chl"}, config.Default(), &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("unknown colormap error = %v, want errUsage", err)
	}
	if _, err := parseArgs([]string{"a.chl", "b.chl"}, config.Default(), &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("two inputs error = %v, want errUsage", err)
	}
	if _, err := parseArgs([]string{"--help"}, config.Default(), &stderr); !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("--help error = %v, want pflag.ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "Usage: chladni") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
}

func TestRunWritesImageAndDocument(t *testing.T) {
	dir := t.TempDir()
	input := writeDocument(t, dir, "plate.chl")
	image := filepath.Join(dir, "plate.png")
	saved := filepath.Join(dir, "copy.chl")

	a, stdout, stderr := testApp(options{input: input, output: image, save: saved, preview: true})
	if code := a.run(); code != exitOK {
		t.Fatalf("run() = %d, stderr %q", code, stderr.String())
	}

	if info, err := os.Stat(image); err != nil || info.Size() == 0 {
		t.Fatalf("image not written: %v", err)
	}
	doc, err := chl.Load(saved)
	if err != nil {
		t.Fatalf("chl.Load() error = %v", err)
	}
	if doc.Grid == nil || doc.Grid.Width() != 24 || doc.Grid.Height() != 16 {
		t.Fatalf("saved grid = %+v", doc.Grid)
	}
	if doc.PaletteIndex != palette.Grayscale.Index() || len(doc.Waves) != 2 {
		t.Fatalf("saved document = %+v", doc)
	}

	out := stdout.String()
	for _, want := range []string{"Loaded", "computed in", "image written", "document saved"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stdout lacks %q: %q", want, out)
		}
	}
}

func TestRunColormapDoesNotChangeSavedPalette(t *testing.T) {
	dir := t.TempDir()
	input := writeDocument(t, dir, "plate.chl")
	saved := filepath.Join(dir, "copy.chl")

	a, _, stderr := testApp(options{input: input, save: saved, output: filepath.Join(dir, "x.bmp"), palette: palette.Spectrum, hasPalette: true})
	if code := a.run(); code != exitOK {
		t.Fatalf("run() = %d, stderr %q", code, stderr.String())
	}
	doc, err := chl.Load(saved)
	if err != nil {
		t.Fatalf("chl.Load() error = %v", err)
	}
	if doc.PaletteIndex != palette.Grayscale.Index() {
		t.Fatalf("PaletteIndex = %d, want the document's grayscale", doc.PaletteIndex)
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	dir := t.TempDir()
	notDoc := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notDoc, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(dir, "corrupt.chl")
	if err := os.WriteFile(corrupt, []byte("not gzip at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		opts options
		code int
	}{
		{"missing", options{input: filepath.Join(dir, "missing.chl")}, exitFailure},
		{"directory", options{input: dir}, exitFailure},
		{"extension", options{input: notDoc}, exitFailure},
		{"corrupt", options{input: corrupt}, exitFailure},
		{"no input without terminal", options{}, exitUsage},
		{"bad image format", options{input: corrupt, output: filepath.Join(dir, "x.webp")}, exitUsage},
	}
	for _, c := range cases {
		a, _, stderr := testApp(c.opts)
		if code := a.run(); code != c.code {
			t.Fatalf("%s: run() = %d, want %d", c.name, code, c.code)
		}
		if !strings.Contains(stderr.String(), "Error:") {
			t.Fatalf("%s: stderr lacks error: %q", c.name, stderr.String())
		}
	}
}

func TestRunInterruptedComputeWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeDocument(t, dir, "plate.chl")
	image := filepath.Join(dir, "plate.png")

	a, _, stderr := testApp(options{input: input, output: image})
	a.interactive = true
	a.runProgram = func(m tea.Model, altScreen bool) (tea.Model, error) {
		return m, tea.ErrInterrupted
	}

	if code := a.run(); code != exitCanceled {
		t.Fatalf("run() = %d, want %d", code, exitCanceled)
	}
	if _, err := os.Stat(image); !os.IsNotExist(err) {
		t.Fatalf("image written after cancel: %v", err)
	}
	if !strings.Contains(stderr.String(), "canceled") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunBrowsesWhenNoInput(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "plate.chl")
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })

	a, stdout, stderr := testApp(options{noProgress: true})
	a.interactive = true
	a.runProgram = func(m tea.Model, altScreen bool) (tea.Model, error) {
		sm, ok := m.(startupModel)
		if !ok {
			t.Fatalf("unexpected program model %T", m)
		}
		if !altScreen {
			t.Fatal("browser should use the alt screen")
		}
		model, _ := sm.Update(ui.BrowserSelectedMsg{Path: "plate.chl"})
		sm = model.(startupModel)
		model, _ = sm.Update(openDocumentCmd(sm.pending, sm.open)())
		return model, nil
	}

	if code := a.run(); code != exitOK {
		t.Fatalf("run() = %d, stderr %q", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Loaded plate.chl") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestRunBrowseCancelledExitsCleanly(t *testing.T) {
	a, stdout, _ := testApp(options{})
	a.interactive = true
	a.runProgram = func(m tea.Model, altScreen bool) (tea.Model, error) {
		return m, nil
	}
	if code := a.run(); code != exitOK {
		t.Fatalf("run() = %d, want %d", code, exitOK)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want nothing", stdout.String())
	}
}
