// Package app wires configuration, line sources, filters and range search
// into the logrange command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/filter"
	"github.com/TimelordUK/logrange/internal/source"
)

// StdinName is the file argument that selects standard input
const StdinName = "-"

// Options controls a single run
type Options struct {
	ConfigPath string
	Files      []string

	// filter
	Search        string
	RangeSearch   string
	Regex         bool
	CaseSensitive bool
	Fuzzy         bool
	FuzzyValue    int // tolerance; 0 takes the configured default
	Invert        bool
	Columns       []string
	ExactColumn   bool
	Level         string

	Columnizer  string
	ShowColumns bool
	Shift       time.Duration

	Line   int    // 1-based line for range search; 0 disables it
	Slice  string // line range expression, e.g. 100-$ or 13:00-14:00
	Output string // directory to export results to

	Follow bool
	Plain  bool

	// InitConfig writes the default config to ConfigPath, or the user
	// config path, and returns without reading any input
	InitConfig bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one logrange invocation
func Run(ctx context.Context, opts Options) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Files) == 0 {
		opts.Files = []string{StdinName}
	}

	if opts.InitConfig {
		return initConfig(opts)
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log.Level, opts.Stderr)

	if err := validate(opts); err != nil {
		return err
	}

	params := buildParams(opts, cfg)
	if opts.Line > 0 && (params == nil || !params.IsRangeConfigured()) {
		return errors.New("range search needs both -s and -r")
	}
	if params != nil {
		// surface bad patterns before any file is opened
		if err := params.CloneWithCurrentColumnizer().Prepare(); err != nil {
			return err
		}
	}

	r := &runner{
		opts:   opts,
		cfg:    cfg,
		log:    log,
		params: params,
	}
	return r.run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func initConfig(opts Options) error {
	path := opts.ConfigPath
	if path == "" {
		path = config.GetConfigPath()
	}
	if path == "" {
		return errors.New("no config path: set -config or $HOME")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	var err error
	if opts.ConfigPath == "" {
		err = config.Save(cfg)
	} else {
		err = config.SaveTo(cfg, path)
	}
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(opts.Stdout, "wrote %s\n", path)
	return nil
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func validate(opts Options) error {
	if opts.Line < 0 {
		return fmt.Errorf("line must be 1 or greater, got %d", opts.Line)
	}
	if opts.Line > 0 && opts.Invert {
		return errors.New("-line and -v are mutually exclusive")
	}
	if opts.Line > 0 && opts.Slice != "" {
		return errors.New("-line and -S are mutually exclusive")
	}
	if opts.Follow && (opts.Line > 0 || opts.Slice != "" || opts.Output != "") {
		return errors.New("-f can only be combined with filtering")
	}
	stdin := 0
	for _, f := range opts.Files {
		if f == StdinName {
			stdin++
		}
	}
	if stdin > 1 {
		return errors.New("standard input given more than once")
	}
	if opts.Follow && stdin > 0 {
		return errors.New("-f needs files, not standard input")
	}
	return nil
}

// buildParams returns nil when no text filter is requested
func buildParams(opts Options, cfg *config.Config) *filter.Params {
	if opts.Search == "" && opts.RangeSearch == "" {
		return nil
	}
	p := &filter.Params{
		SearchText:       opts.Search,
		RangeSearchText:  opts.RangeSearch,
		IsRegex:          opts.Regex,
		CaseSensitive:    opts.CaseSensitive || cfg.Filter.CaseSensitive,
		Invert:           opts.Invert,
		ColumnRestrict:   len(opts.Columns) > 0,
		ExactColumnMatch: opts.ExactColumn,
		Columns:          opts.Columns,
		IsRangeSearch:    opts.RangeSearch != "",
	}
	if opts.Fuzzy {
		p.IsFuzzy = true
		p.FuzzyValue = opts.FuzzyValue
		if p.FuzzyValue <= 0 {
			p.FuzzyValue = cfg.Filter.FuzzyValue
		}
	}
	return p
}

// parseLevel maps a level name to a LogLevel
func parseLevel(name string) (source.LogLevel, error) {
	for l := source.LevelTrace; l <= source.LevelFatal; l++ {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return source.LevelUnknown, fmt.Errorf("unknown level %q", name)
}
