package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TimelordUK/logrange/internal/columncache"
	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/filter"
	"github.com/TimelordUK/logrange/internal/rangefind"
	"github.com/TimelordUK/logrange/internal/render"
	"github.com/TimelordUK/logrange/internal/slice"
	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
	"github.com/TimelordUK/logrange/pkg/logformat"
)

type runner struct {
	opts   Options
	cfg    *config.Config
	log    zerolog.Logger
	params *filter.Params
}

// view is everything needed to select and print lines of one input
type view struct {
	name     string
	src      source.LineSource
	file     *source.FileSource // nil for standard input
	cz       columnizer.Columnizer
	lctx     *columnizer.Callback
	cache    *columncache.Cache
	renderer render.Renderer
	detector *logformat.LevelDetector

	out      bytes.Buffer
	total    int
	selected int
	found    *rangefind.Range // set by -line
}

func (r *runner) run(ctx context.Context) error {
	views := make([]*view, len(r.opts.Files))
	defer func() {
		for _, v := range views {
			if v != nil {
				v.close()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range r.opts.Files {
		g.Go(func() error {
			v, err := r.open(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			views[i] = v
			if err := r.process(gctx, v); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	multi := len(views) > 1
	for i, v := range views {
		if multi {
			if i > 0 {
				fmt.Fprintln(r.opts.Stdout)
			}
			fmt.Fprintf(r.opts.Stdout, "==> %s <==\n", v.name)
		}
		if _, err := io.Copy(r.opts.Stdout, &v.out); err != nil {
			return err
		}
		r.log.Info().Str("file", v.name).
			Msgf("%s of %s lines selected", humanize.Comma(int64(v.selected)), humanize.Comma(int64(v.total)))
	}

	if r.opts.Follow {
		return r.follow(ctx, views)
	}
	return nil
}

func (r *runner) open(name string) (*view, error) {
	v := &view{name: name}

	if name == StdinName {
		src, err := source.ReadMemorySource("", r.opts.Stdin)
		if err != nil {
			return nil, err
		}
		v.name = "stdin"
		v.src = src
	} else {
		src, err := source.NewFileSourceWithOptions(name, source.FileOptions{
			Follow:      r.opts.Follow,
			WaitTimeout: r.cfg.Source.WaitTimeout(),
		})
		if err != nil {
			return nil, err
		}
		v.src = src
		v.file = src
	}

	var cz columnizer.Columnizer
	var err error
	if r.opts.Columnizer != "" {
		cz, err = columnizer.New(r.opts.Columnizer, r.cfg)
	} else {
		cz, err = columnizer.FromConfig(r.cfg)
	}
	if err != nil {
		v.close()
		return nil, err
	}
	v.cz = cz
	v.lctx = columnizer.NewCallback(v.src)
	v.cache = columncache.New()
	v.detector = logformat.NewLevelDetector(&r.cfg.LogLevels)

	if init, ok := cz.(columnizer.Initializer); ok {
		if err := init.Init(v.lctx); err != nil {
			v.close()
			return nil, fmt.Errorf("init columnizer %s: %w", cz.Name(), err)
		}
	}
	if r.opts.Shift != 0 {
		if ts, ok := columnizer.AsTimeshifter(cz); ok {
			ts.SetTimeOffset(int(r.opts.Shift.Milliseconds()))
		} else {
			r.log.Warn().Str("columnizer", cz.Name()).Msg("columnizer can't shift time, ignoring -shift")
		}
	}

	v.renderer = r.renderer(v)
	return v, nil
}

func (v *view) close() {
	if c, ok := v.src.(io.Closer); ok {
		c.Close()
	}
}

func (r *runner) renderer(v *view) render.Renderer {
	if r.opts.Plain || !isTerminal(r.opts.Stdout) {
		return render.NewPlainRenderer()
	}
	if !r.opts.ShowColumns && v.file != nil && render.IsSyntaxHighlightable(v.name) {
		sr := render.NewSyntaxRenderer(v.name)
		r.log.Debug().Str("file", v.name).Str("lexer", sr.LexerName()).Msg("syntax highlighting")
		return sr
	}
	cr := render.NewColumnRenderer(r.cfg)
	cr.SetLineNumbers(true, len(strconv.Itoa(v.src.LineCount())))
	return cr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *runner) viewParams(v *view) *filter.Params {
	if r.params == nil {
		return nil
	}
	p := r.params.CloneWithCurrentColumnizer()
	p.Columnizer = v.cz
	return p
}

func (r *runner) process(ctx context.Context, v *view) error {
	v.total = v.src.LineCount()

	lines, err := r.selectLines(ctx, v)
	if err != nil {
		return err
	}
	v.selected = len(lines)

	if r.opts.Output != "" {
		return r.export(ctx, v, lines)
	}

	if r.opts.ShowColumns {
		fmt.Fprintln(&v.out, strings.Join(v.cz.ColumnNames(), "\t"))
	}
	return r.print(ctx, v, lines)
}

func (r *runner) selectLines(ctx context.Context, v *view) ([]int, error) {
	params := r.viewParams(v)

	if r.opts.Line > 0 {
		finder := rangefind.New(v.src, params,
			rangefind.WithLogger(r.log.With().Str("file", v.name).Logger()),
			rangefind.WithLineContext(v.lctx))
		found, err := finder.FindRange(ctx, r.opts.Line-1)
		if err != nil {
			return nil, err
		}
		if found == nil {
			r.log.Warn().Str("file", v.name).Int("line", r.opts.Line).Msg("line is not inside a range")
			return nil, nil
		}
		v.found = found
		return slices.Collect(slice.Span(found.StartLine, found.EndLine+1)), nil
	}

	from, to := 0, v.total
	if r.opts.Slice != "" {
		var err error
		from, to, err = slice.NewLocator(v.src, 0).ParseRange(ctx, r.opts.Slice)
		if err != nil {
			return nil, err
		}
	}

	fp := filter.NewFilteredProvider(v.src, v.detector.Detect, r.log)
	if params != nil {
		fp.SetParams(params)
	}
	if r.opts.Level != "" {
		level, err := parseLevel(r.opts.Level)
		if err != nil {
			return nil, err
		}
		fp.SetLevelAndAbove(level)
	}
	if !fp.IsFiltered() {
		return slices.Collect(slice.Span(from, to)), nil
	}
	if err := fp.Rebuild(ctx); err != nil {
		return nil, err
	}

	var lines []int
	for i := fp.FilteredIndexFor(from); i >= 0 && i < fp.LineCount(); i++ {
		n := fp.OriginalLineNumber(i)
		if n >= to {
			break
		}
		lines = append(lines, n)
	}
	return lines, nil
}

func (r *runner) print(ctx context.Context, v *view, lines []int) error {
	for _, n := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := v.src.GetLine(n)
		if err != nil {
			return err
		}
		if line == nil {
			break
		}
		var split *columnizer.SplitLine
		if r.opts.ShowColumns {
			if split, err = v.cache.Get(ctx, v.src, n, v.cz, v.lctx); err != nil {
				return fmt.Errorf("columnize line %d: %w", n+1, err)
			}
		}
		fmt.Fprintln(&v.out, v.renderer.Render(line, split))
	}
	return nil
}

func (r *runner) export(ctx context.Context, v *view, lines []int) error {
	if len(lines) == 0 {
		r.log.Warn().Str("file", v.name).Msg("nothing selected, no export written")
		return nil
	}
	if err := os.MkdirAll(r.opts.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	slicer := slice.NewSlicerIn(r.opts.Output)
	var info *slice.Info
	var err error
	if v.found != nil {
		info, err = slicer.SliceFound(ctx, v.src, v.found)
	} else {
		info, err = slicer.SliceLines(ctx, v.src, lines)
	}
	if err != nil {
		return err
	}

	size := ""
	if st, err := os.Stat(info.CachePath); err == nil {
		size = humanize.Bytes(uint64(st.Size()))
	}
	fmt.Fprintf(&v.out, "%s: wrote %s lines (%s)\n", info.CachePath, humanize.Comma(int64(info.Lines)), size)
	return nil
}
