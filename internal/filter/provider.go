package filter

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/logrange/internal/source"
)

// LevelDetectFunc detects log level from content
type LevelDetectFunc func(content []byte) source.LogLevel

// FilteredProvider wraps a LineSource and exposes only the lines that pass
// the filter params and the level filter. It is itself a LineSource whose
// line numbers are positions in the filtered result.
type FilteredProvider struct {
	source   source.LineSource
	detector LevelDetectFunc
	log      zerolog.Logger

	// Level filter: if set, only show lines with these levels
	levelFilter map[source.LogLevel]bool

	params *Params

	// Cached filtered indices (original line numbers that pass filter)
	filteredIndices []int
	dirty           bool
	lastErr         error
}

// NewFilteredProvider creates a filtered provider
func NewFilteredProvider(src source.LineSource, detector LevelDetectFunc, log zerolog.Logger) *FilteredProvider {
	return &FilteredProvider{
		source:      src,
		detector:    detector,
		log:         log,
		levelFilter: make(map[source.LogLevel]bool),
		dirty:       true,
	}
}

// SetParams sets the text filter; nil clears it
func (f *FilteredProvider) SetParams(p *Params) {
	f.params = p
	f.dirty = true
}

// SetLevelAndAbove sets filter to show this level and all higher severity
func (f *FilteredProvider) SetLevelAndAbove(level source.LogLevel) {
	f.levelFilter = make(map[source.LogLevel]bool)
	for l := source.LevelTrace; l <= source.LevelFatal; l++ {
		if l >= level {
			f.levelFilter[l] = true
		}
	}
	f.dirty = true
}

// IsFiltered returns true if any filter is active
func (f *FilteredProvider) IsFiltered() bool {
	return len(f.levelFilter) > 0 || f.params != nil
}

// Rebuild recomputes the filtered index if dirty
func (f *FilteredProvider) Rebuild(ctx context.Context) error {
	if !f.dirty {
		return f.lastErr
	}
	f.filteredIndices = nil
	f.lastErr = nil

	if !f.IsFiltered() {
		f.dirty = false
		return nil
	}

	var candidates []int
	if f.params != nil {
		runner, err := NewRunner(f.params, f.log)
		if err != nil {
			f.lastErr = err
			return err
		}
		candidates, err = runner.Run(ctx, f.source, 0, -1)
		if err != nil {
			f.lastErr = err
			return err
		}
	} else {
		total := f.source.LineCount()
		candidates = make([]int, total)
		for i := range candidates {
			candidates[i] = i
		}
	}

	for _, n := range candidates {
		if len(f.levelFilter) > 0 {
			line, err := f.source.GetLine(n)
			if err != nil || line == nil {
				continue
			}
			level := line.Level
			if level == source.LevelUnknown && f.detector != nil {
				level = f.detector(line.Content)
			}
			if !f.levelFilter[level] {
				continue
			}
		}
		f.filteredIndices = append(f.filteredIndices, n)
	}

	f.dirty = false
	return nil
}

func (f *FilteredProvider) rebuildIndex() {
	if f.dirty {
		f.Rebuild(context.Background())
	}
}

// LineCount returns total number of filtered lines
func (f *FilteredProvider) LineCount() int {
	f.rebuildIndex()

	if !f.IsFiltered() {
		return f.source.LineCount()
	}
	return len(f.filteredIndices)
}

// GetLine returns line at filtered index; Line.Number is the original line number
func (f *FilteredProvider) GetLine(index int) (*source.Line, error) {
	f.rebuildIndex()

	if !f.IsFiltered() {
		return f.source.GetLine(index)
	}
	if index < 0 || index >= len(f.filteredIndices) {
		return nil, nil
	}
	return f.source.GetLine(f.filteredIndices[index])
}

// GetLineWaiting returns line at filtered index. The filtered index only
// changes on rebuild, so there is nothing to wait for.
func (f *FilteredProvider) GetLineWaiting(ctx context.Context, index int) (*source.Line, error) {
	if !f.IsFiltered() {
		return f.source.GetLineWaiting(ctx, index)
	}
	return f.GetLine(index)
}

// OriginalLineNumber returns the original line number for a filtered index
func (f *FilteredProvider) OriginalLineNumber(filteredIndex int) int {
	f.rebuildIndex()

	if !f.IsFiltered() {
		return filteredIndex
	}
	if filteredIndex < 0 || filteredIndex >= len(f.filteredIndices) {
		return -1
	}
	return f.filteredIndices[filteredIndex]
}

// FilteredIndexFor returns the filtered index of an original line, or of the
// first kept line after it; -1 when there is none
func (f *FilteredProvider) FilteredIndexFor(originalLine int) int {
	f.rebuildIndex()

	if !f.IsFiltered() {
		return originalLine
	}
	i := sort.SearchInts(f.filteredIndices, originalLine)
	if i >= len(f.filteredIndices) {
		return -1
	}
	return i
}

// Path returns the path of the wrapped source
func (f *FilteredProvider) Path() string {
	return source.PathOf(f.source)
}
