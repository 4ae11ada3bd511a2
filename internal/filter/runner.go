package filter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// Runner applies a filter to every line of a source.
//
// When the params carry a RangeSearchText and IsRangeSearch is set, the
// runner filters ranges: a line matching RangeSearchText opens a range, the
// following lines are kept while they match SearchText, and the first line
// that doesn't closes it. Invert then selects the lines outside of ranges.
type Runner struct {
	params *Params
	log    zerolog.Logger
}

// NewRunner prepares a private copy of params
func NewRunner(params *Params, log zerolog.Logger) (*Runner, error) {
	p := params.CloneWithCurrentColumnizer()
	p.IsInRange = false
	if err := p.Prepare(); err != nil {
		return nil, err
	}
	return &Runner{params: p, log: log}, nil
}

// Run returns the numbers of the lines in [from, to) that pass the filter.
// to < 0 means up to the current end of src. ctx is checked for every line.
func (r *Runner) Run(ctx context.Context, src source.LineSource, from, to int) ([]int, error) {
	if from < 0 {
		from = 0
	}
	if count := src.LineCount(); to < 0 || to > count {
		to = count
	}

	lctx := columnizer.NewCallback(src)
	rangeMode := r.params.IsRangeSearch && r.params.RangeSearchText != ""

	var (
		marker, main *Params
		inRange      bool
	)
	if rangeMode {
		// range membership is decided without inversion; Invert flips the result
		marker = r.params.CloneWithCurrentColumnizer()
		marker.Invert = false
		marker.IsInRange = false
		main = marker.CloneWithCurrentColumnizer()
		main.IsInRange = true
	}

	var matches []int
	for n := from; n < to; n++ {
		if err := ctx.Err(); err != nil {
			return matches, err
		}

		line, err := src.GetLineWaiting(ctx, n)
		if err != nil {
			return matches, fmt.Errorf("filter line %d: %w", n, err)
		}
		if line == nil {
			break
		}
		lctx.SetLineNum(n)

		var keep bool
		if rangeMode {
			keep, inRange, err = stepRange(marker, main, inRange, line, lctx)
			keep = keep != r.params.Invert
		} else {
			keep, err = Matches(r.params, line, lctx)
		}
		if err != nil {
			return matches, err
		}
		if keep {
			matches = append(matches, n)
		}
	}

	r.log.Debug().
		Str("search", r.params.SearchText).
		Str("range", r.params.RangeSearchText).
		Int("from", from).
		Int("to", to).
		Int("matches", len(matches)).
		Msg("filter finished")
	return matches, nil
}

// stepRange advances the range state machine by one line
func stepRange(marker, main *Params, inRange bool, line *source.Line, lctx columnizer.LineContext) (keep, stillInRange bool, err error) {
	if inRange {
		ok, err := Matches(main, line, lctx)
		if err != nil || ok {
			return ok, ok, err
		}
	}
	// outside a range, or the range just ended: this line may open the next one
	ok, err := Matches(marker, line, lctx)
	return ok, ok, err
}
