package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/olivier-w/chladni/internal/config"
	"github.com/olivier-w/chladni/internal/logging"
	"github.com/olivier-w/chladni/internal/palette"
	"github.com/olivier-w/chladni/internal/ui"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitCanceled = 130
)

type options struct {
	input      string
	output     string
	save       string
	colormap   string
	palette    palette.ID
	hasPalette bool
	preview    bool
	noProgress bool
	logLevel   string
}

var errUsage = errors.New("usage error")

func parseArgs(args []string, cfg config.Config, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("chladni", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: chladni [flags] [input.chl]\n\n")
		fmt.Fprintf(stderr, "Computes the pattern stored in a .chl document and renders or re-saves it.\n")
		fmt.Fprintf(stderr, "Without an input on a terminal, a browser lists the .chl files here.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.output, "output", "o", "", "write the rendered image here (format from extension)")
	fs.StringVarP(&opts.save, "save", "s", "", "save the document with the computed grid here")
	fs.StringVarP(&opts.colormap, "colormap", "c", "", "palette for the image: "+strings.Join(palette.Names(), ", ")+" (default: the document's)")
	fs.BoolVarP(&opts.preview, "preview", "p", false, "print a preview of the result to the terminal")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "compute without the interactive progress view")
	fs.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.input = fs.Arg(0)
	default:
		return opts, fmt.Errorf("%w: expected at most one input file, got %d", errUsage, fs.NArg())
	}

	if opts.colormap != "" {
		id, ok := palette.Lookup(opts.colormap)
		if !ok {
			return opts, fmt.Errorf("%w: colormap %q not found (available: %s)",
				errUsage, opts.colormap, strings.Join(palette.Names(), ", "))
		}
		opts.palette = id
		opts.hasPalette = true
	}
	return opts, nil
}

func main() {
	cfg := config.Load()

	opts, err := parseArgs(os.Args[1:], cfg, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(exitOK)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(exitUsage)
	}

	log := logging.New(logging.WithLevel(opts.logLevel))

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	app := &app{
		cfg:         cfg,
		log:         log,
		opts:        opts,
		interactive: interactive,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	code := app.run()
	_ = log.Sync()
	os.Exit(code)
}
