package app

import (
	"context"
	"fmt"
	"io"

	"github.com/TimelordUK/logrange/internal/filter"
	"github.com/TimelordUK/logrange/internal/source"
)

// follow prints lines appended to the files after the initial pass until
// ctx is done. Each batch of new lines is filtered on its own, so a range
// that spans two batches is not carried over.
func (r *runner) follow(ctx context.Context, views []*view) error {
	byPath := make(map[string]*view, len(views))
	refreshers := make([]source.Refresher, 0, len(views))
	counts := make([]int, 0, len(views))
	printed := make(map[*view]int, len(views))

	for _, v := range views {
		if v.file == nil || !v.file.Following() {
			continue
		}
		byPath[v.file.Path()] = v
		refreshers = append(refreshers, v.file)
		counts = append(counts, v.total)
		printed[v] = v.total
	}

	follower := source.NewFollower(r.cfg.Source.PollInterval(), r.log, refreshers, counts)
	follower.Start()
	defer follower.Close()

	var last *view
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-follower.Updates():
			v, ok := byPath[u.Path]
			if !ok {
				continue
			}
			// updates may be dropped, so catch up from what was printed
			from, to := printed[v], v.src.LineCount()
			if from >= to {
				continue
			}
			lines, err := r.filterSpan(ctx, v, from, to)
			if err != nil {
				return fmt.Errorf("%s: %w", v.name, err)
			}
			printed[v] = to
			if len(lines) == 0 {
				continue
			}

			if len(views) > 1 && last != v {
				fmt.Fprintf(r.opts.Stdout, "\n==> %s <==\n", v.name)
				last = v
			}
			if err := r.print(ctx, v, lines); err != nil {
				return fmt.Errorf("%s: %w", v.name, err)
			}
			if _, err := io.Copy(r.opts.Stdout, &v.out); err != nil {
				return err
			}
		}
	}
}

// filterSpan returns the lines in [from, to) passing the text and level filters
func (r *runner) filterSpan(ctx context.Context, v *view, from, to int) ([]int, error) {
	var lines []int
	if params := r.viewParams(v); params != nil {
		runner, err := filter.NewRunner(params, r.log)
		if err != nil {
			return nil, err
		}
		if lines, err = runner.Run(ctx, v.src, from, to); err != nil {
			return nil, err
		}
	} else {
		for n := from; n < to; n++ {
			lines = append(lines, n)
		}
	}

	if r.opts.Level == "" {
		return lines, nil
	}
	minLevel, err := parseLevel(r.opts.Level)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, n := range lines {
		line, err := v.src.GetLine(n)
		if err != nil {
			return nil, err
		}
		if line != nil && v.detector.DetectLine(line) >= minLevel {
			kept = append(kept, n)
		}
	}
	return kept, nil
}
