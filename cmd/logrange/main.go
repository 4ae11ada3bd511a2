package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TimelordUK/logrange/internal/app"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options
	var inColumns string

	flag.StringVar(&opts.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/logrange/config.toml)")
	flag.StringVar(&opts.Search, "s", "", "search text; lines must match it")
	flag.StringVar(&opts.RangeSearch, "r", "", "range start text; enables range filtering")
	flag.BoolVar(&opts.Regex, "e", false, "treat search texts as regular expressions")
	flag.BoolVar(&opts.CaseSensitive, "case", false, "case sensitive matching")
	flag.BoolVar(&opts.Fuzzy, "fuzzy", false, "fuzzy matching")
	flag.IntVar(&opts.FuzzyValue, "tolerance", 0, "fuzzy tolerance in edits (default from config)")
	flag.BoolVar(&opts.Invert, "v", false, "select non-matching lines")
	flag.StringVar(&inColumns, "in", "", "comma separated columns to search in")
	flag.BoolVar(&opts.ExactColumn, "exact", false, "column values must match the search text exactly")
	flag.StringVar(&opts.Level, "level", "", "show this level and above (trace, debug, info, warn, error, fatal)")
	flag.StringVar(&opts.Columnizer, "c", "", "columnizer: "+strings.Join(columnizer.Names(), ", "))
	flag.BoolVar(&opts.ShowColumns, "columns", false, "print lines split into columns")
	flag.DurationVar(&opts.Shift, "shift", 0, "shift timestamps by this duration (e.g. -1h30m)")
	flag.IntVar(&opts.Line, "line", 0, "print the range containing this line (1-based)")
	flag.StringVar(&opts.Slice, "S", "", "line range (e.g. 1000-5000, 100-$, $-500, 13:00-14:00)")
	flag.StringVar(&opts.Output, "o", "", "write selected lines to a file in this directory")
	flag.BoolVar(&opts.Follow, "f", false, "keep printing lines appended to the files")
	flag.BoolVar(&opts.Plain, "plain", false, "no colors or line numbers")
	flag.BoolVar(&opts.InitConfig, "init-config", false, "write the default config file and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: logrange [flags] [file ...]\n")
		fmt.Fprintf(os.Stderr, "Reads standard input when no file (or -) is given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if inColumns != "" {
		for _, c := range strings.Split(inColumns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}
	opts.Files = flag.Args()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "logrange: %v\n", err)
		return 1
	}
	return 0
}
