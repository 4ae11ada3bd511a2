package slice

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/TimelordUK/logrange/internal/rangefind"
	"github.com/TimelordUK/logrange/internal/source"
)

func numbered() *source.MemorySource {
	src := source.NewMemorySource("app.log", "l1", "l2", "l3", "l4", "l5")
	src.Close()
	return src
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSliceRange(t *testing.T) {
	s := NewSlicerIn(t.TempDir())
	info, err := s.SliceRange(context.Background(), numbered(), 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, info.CachePath); got != "l2\nl3\n" {
		t.Errorf("slice = %q", got)
	}
	if info.Lines != 2 || info.StartLine != 1 || info.EndLine != 3 || info.SourcePath != "app.log" {
		t.Errorf("info = %+v", info)
	}
	if filepath.Base(info.CachePath) != "logrange-slice-1-3-app.log" {
		t.Errorf("name = %s", filepath.Base(info.CachePath))
	}
}

func TestSliceRangeClampsAndRejects(t *testing.T) {
	s := NewSlicerIn(t.TempDir())
	info, err := s.SliceRange(context.Background(), numbered(), -5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if info.Lines != 5 {
		t.Errorf("clamped slice has %d lines", info.Lines)
	}

	if _, err := s.SliceRange(context.Background(), numbered(), 3, 3); err == nil {
		t.Error("empty range accepted")
	}
}

func TestSliceFound(t *testing.T) {
	s := NewSlicerIn(t.TempDir())
	info, err := s.SliceFound(context.Background(), numbered(), &rangefind.Range{StartLine: 2, EndLine: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, info.CachePath); got != "l3\nl4\nl5\n" {
		t.Errorf("slice = %q", got)
	}
	if _, err := s.SliceFound(context.Background(), numbered(), nil); err == nil {
		t.Error("nil range accepted")
	}
}

func TestSliceLines(t *testing.T) {
	s := NewSlicerIn(t.TempDir())
	info, err := s.SliceLines(context.Background(), numbered(), []int{0, 2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, info.CachePath); got != "l1\nl3\nl5\n" {
		t.Errorf("slice = %q", got)
	}
	if _, err := s.SliceLines(context.Background(), numbered(), nil); err == nil {
		t.Error("empty selection accepted")
	}
}

func TestWriteLinesSkipsAbsent(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteLines(context.Background(), &buf, numbered(), slices.Values([]int{4, 9, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || buf.String() != "l5\nl1\n" {
		t.Errorf("WriteLines = %d, %q", n, buf.String())
	}
}

func TestWriteLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := WriteLines(ctx, &buf, numbered(), Span(0, 3)); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestSpan(t *testing.T) {
	if got := slices.Collect(Span(2, 5)); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("Span(2, 5) = %v", got)
	}
	if got := slices.Collect(Span(3, 3)); len(got) != 0 {
		t.Errorf("Span(3, 3) = %v", got)
	}
}
