package slice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/TimelordUK/logrange/internal/rangefind"
	"github.com/TimelordUK/logrange/internal/source"
)

// Info contains metadata about a slice
type Info struct {
	SourcePath string // Original file path
	CachePath  string // Written file path
	StartLine  int    // Start line (0-based, inclusive)
	EndLine    int    // End line (0-based, exclusive)
	Lines      int    // Number of lines written
}

// Slicer extracts portions of line sources to files
type Slicer struct {
	cacheDir string
}

// NewSlicerIn creates a slicer writing to dir
func NewSlicerIn(dir string) *Slicer {
	return &Slicer{cacheDir: dir}
}

// SliceRange extracts lines from startLine to endLine (exclusive)
func (s *Slicer) SliceRange(ctx context.Context, src source.LineSource, startLine, endLine int) (*Info, error) {
	if startLine < 0 {
		startLine = 0
	}
	if endLine > src.LineCount() {
		endLine = src.LineCount()
	}
	if startLine >= endLine {
		return nil, fmt.Errorf("invalid range: %d-%d", startLine, endLine)
	}

	name := fmt.Sprintf("logrange-slice-%d-%d-%s", startLine, endLine, baseName(src))
	return s.write(ctx, src, name, startLine, endLine, Span(startLine, endLine))
}

// Span yields the line numbers from start to end (exclusive)
func Span(start, end int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := start; i < end; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// SliceFound extracts the lines of a range found by a range search
func (s *Slicer) SliceFound(ctx context.Context, src source.LineSource, r *rangefind.Range) (*Info, error) {
	if r == nil {
		return nil, fmt.Errorf("no range to slice")
	}
	return s.SliceRange(ctx, src, r.StartLine, r.EndLine+1)
}

// SliceLines extracts the given line numbers, e.g. the result of a filter run
func (s *Slicer) SliceLines(ctx context.Context, src source.LineSource, lines []int) (*Info, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines to slice")
	}
	name := fmt.Sprintf("logrange-slice-filtered-%s", baseName(src))
	return s.write(ctx, src, name, lines[0], lines[len(lines)-1]+1, slices.Values(lines))
}

// WriteLines copies the given lines of src to w, one per line.
// Lines that are not present are skipped.
func WriteLines(ctx context.Context, w io.Writer, src source.LineSource, lines iter.Seq[int]) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0

	for n := range lines {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		line, err := src.GetLineWaiting(ctx, n)
		if err != nil {
			return written, fmt.Errorf("failed to read line %d: %w", n, err)
		}
		if line == nil {
			continue
		}
		if _, err := bw.Write(line.Content); err != nil {
			return written, fmt.Errorf("failed to write line %d: %w", n, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, fmt.Errorf("failed to write newline: %w", err)
		}
		written++
	}
	return written, bw.Flush()
}

func (s *Slicer) write(ctx context.Context, src source.LineSource, name string, start, end int, lines iter.Seq[int]) (*Info, error) {
	cachePath := filepath.Join(s.cacheDir, name)

	outFile, err := os.Create(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create slice file: %w", err)
	}
	defer outFile.Close()

	written, err := WriteLines(ctx, outFile, src, lines)
	if err != nil {
		os.Remove(cachePath)
		return nil, err
	}

	return &Info{
		SourcePath: source.PathOf(src),
		CachePath:  cachePath,
		StartLine:  start,
		EndLine:    end,
		Lines:      written,
	}, nil
}

func baseName(src source.LineSource) string {
	p := source.PathOf(src)
	if p == "" {
		return "stdin"
	}
	return filepath.Base(p)
}
