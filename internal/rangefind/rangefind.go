// Package rangefind locates the block of lines around a given line that
// starts at a range-start marker and continues while the filter's main
// condition holds.
package rangefind

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/logrange/internal/filter"
	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// Range is an inclusive block of line numbers
type Range struct {
	StartLine int
	EndLine   int
}

// Len returns the number of lines in the range
func (r Range) Len() int {
	return r.EndLine - r.StartLine + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.StartLine, r.EndLine)
}

// State is the phase a finder is in
type State int

const (
	StateIdle State = iota
	StateScanningBackward
	StateNotFound
	StateRangeStartFound
	StateScanningForward
	StateRangeComplete
)

var stateNames = [...]string{"idle", "scanning-backward", "not-found", "range-start-found", "scanning-forward", "range-complete"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Finder finds ranges in one line source. A Finder is not reentrant: one
// FindRange call must complete before the next starts. Independent finders
// may run concurrently.
type Finder struct {
	src    source.LineSource
	lctx   columnizer.LineContext
	params *filter.Params
	log    zerolog.Logger
	state  State
}

// Option configures a Finder
type Option func(*Finder)

// WithLogger sets the logger used for diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(f *Finder) { f.log = log }
}

// WithLineContext sets the line context handed to the columnizer
func WithLineContext(lctx columnizer.LineContext) Option {
	return func(f *Finder) { f.lctx = lctx }
}

// New creates a finder over src. params is cloned; later changes to it are
// not seen by the finder and the finder never modifies it.
func New(src source.LineSource, params *filter.Params, opts ...Option) *Finder {
	f := &Finder{
		src:    src,
		params: params.CloneWithCurrentColumnizer(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.lctx == nil {
		f.lctx = columnizer.NewCallback(src)
	}
	return f
}

// State returns the state the last FindRange call ended in
func (f *Finder) State() State {
	return f.state
}

// FindRange returns the range containing startLine, or nil when startLine
// is not inside one.
//
// The scan first walks backward from startLine looking for a line matching
// RangeSearchText. It fails when it runs past line 0, reaches a line that is
// not present, or steps onto a boundary line that matches neither the range
// start nor SearchText. From the start it then walks forward while lines
// match SearchText. Missing search texts yield nil as well. An error is
// returned only for columnizer or source failures and when ctx is done.
//
// Invert does not apply: a range is located by what its lines contain. For
// the lines A START x x x END B every start from 1 to 4 yields 1-4.
func (f *Finder) FindRange(ctx context.Context, startLine int) (*Range, error) {
	f.state = StateIdle
	p := f.params

	f.log.Debug().Str("search", p.SearchText).Str("range", p.RangeSearchText).
		Int("line", startLine).Msg("starting range search")

	if strings.TrimSpace(p.RangeSearchText) == "" {
		f.log.Info().Msg("range search text not set, cancelling range search")
		f.state = StateNotFound
		return nil, nil
	}
	if strings.TrimSpace(p.SearchText) == "" {
		f.log.Info().Msg("search text not set, cancelling range search")
		f.state = StateNotFound
		return nil, nil
	}

	main := p.CloneWithCurrentColumnizer()
	main.IsRangeSearch = false
	main.IsInRange = false
	main.Invert = false
	if err := main.Prepare(); err != nil {
		return nil, err
	}
	// in range-search mode outside a range the predicate tests RangeSearchText
	marker := main.CloneWithCurrentColumnizer()
	marker.IsRangeSearch = true

	lineCount := f.src.LineCount()

	f.state = StateScanningBackward
	start, found, err := f.scanBackward(ctx, startLine, main, marker)
	if err != nil {
		return nil, err
	}
	if !found {
		f.log.Info().Int("line", startLine).Msg("range start not found")
		f.state = StateNotFound
		return nil, nil
	}
	f.state = StateRangeStartFound

	live := main.CloneWithCurrentColumnizer()
	live.IsRangeSearch = true
	live.IsInRange = true

	f.state = StateScanningForward
	end, err := f.scanForward(ctx, start, lineCount, live)
	if err != nil {
		return nil, err
	}

	r := &Range{StartLine: start, EndLine: end}
	f.state = StateRangeComplete
	f.log.Info().Int("start", r.StartLine).Int("end", r.EndLine).
		Msgf("range search finished, found %d lines", r.Len())
	return r, nil
}

func (f *Finder) scanBackward(ctx context.Context, startLine int, main, marker *filter.Params) (int, bool, error) {
	lineNum := startLine
	line, err := f.line(ctx, lineNum)
	if err != nil || line == nil {
		return 0, false, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}

		f.lctx.SetLineNum(lineNum)
		isStart, err := filter.Matches(marker, line, f.lctx)
		if err != nil {
			return 0, false, err
		}
		if isStart {
			return lineNum, true, nil
		}

		lineNum--
		if lineNum < 0 {
			return 0, false, nil
		}
		if line, err = f.line(ctx, lineNum); err != nil || line == nil {
			return 0, false, err
		}

		f.lctx.SetLineNum(lineNum)
		boundary, err := f.isBoundary(line, main, marker)
		if err != nil {
			return 0, false, err
		}
		if boundary {
			// not between a range start and startLine
			return 0, false, nil
		}
	}
}

// isBoundary reports whether line can't be part of a range body
func (f *Finder) isBoundary(line *source.Line, main, marker *filter.Params) (bool, error) {
	inBody, err := filter.Matches(main, line, f.lctx)
	if err != nil || inBody {
		return false, err
	}
	isStart, err := filter.Matches(marker, line, f.lctx)
	return !isStart, err
}

func (f *Finder) scanForward(ctx context.Context, start, lineCount int, live *filter.Params) (int, error) {
	lineNum := start + 1
	for lineNum < lineCount {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		line, err := f.line(ctx, lineNum)
		if err != nil {
			return 0, err
		}
		if line == nil {
			break
		}

		f.lctx.SetLineNum(lineNum)
		ok, err := filter.Matches(live, line, f.lctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		lineNum++
	}

	end := lineNum - 1
	if end < start {
		end = start
	}
	return end, nil
}

func (f *Finder) line(ctx context.Context, n int) (*source.Line, error) {
	line, err := f.src.GetLineWaiting(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("range search line %d: %w", n, err)
	}
	return line, nil
}
