// Package columnizer splits raw log lines into named columns.
//
// A Columnizer is a stateful strategy. It sees the line it splits plus a
// LineContext that knows which line number is being split and can fetch
// sibling lines. Callers must set the context's line number to the line
// being split before calling SplitLine; columnizers that look at neighbours
// (the Delta column of the timestamp columnizer, for instance) rely on it.
//
// Optional capabilities are separate small interfaces, discovered with a
// type assertion (see AsTimeshifter).
package columnizer

import (
	"errors"

	"github.com/mattn/go-runewidth"

	"github.com/TimelordUK/logrange/internal/source"
)

// ErrUnknown is returned when a columnizer name is not registered
var ErrUnknown = errors.New("unknown columnizer")

// DefaultMaxDisplayWidth bounds Column.DisplayValue when no width is configured
const DefaultMaxDisplayWidth = 256

// Columnizer splits one line into an ordered set of named columns
type Columnizer interface {
	Name() string
	Description() string
	ColumnCount() int
	ColumnNames() []string
	SplitLine(lctx LineContext, line *source.Line) (*SplitLine, error)
}

// Timeshifter is implemented by columnizers that interpret timestamp columns
// and can shift them by an offset
type Timeshifter interface {
	IsTimeshiftImplemented() bool
	TimeOffset() int
	SetTimeOffset(ms int)
	// PushValue applies an edited column value and returns the new offset
	PushValue(lctx LineContext, column int, value, oldValue string) (int, error)
}

// Initializer is implemented by columnizers that inspect the source once
// before use, e.g. to read a header line
type Initializer interface {
	Init(lctx LineContext) error
}

// AsTimeshifter returns c's time-shift capability, if it has one that is enabled
func AsTimeshifter(c Columnizer) (Timeshifter, bool) {
	ts, ok := c.(Timeshifter)
	if !ok || !ts.IsTimeshiftImplemented() {
		return nil, false
	}
	return ts, true
}

// Column is one value of a split line
type Column struct {
	FullValue    string
	DisplayValue string // FullValue truncated to the display width
}

// NewColumn builds a column, truncating the display value to maxWidth cells
func NewColumn(value string, maxWidth int) Column {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxDisplayWidth
	}
	display := value
	if runewidth.StringWidth(value) > maxWidth {
		display = runewidth.Truncate(value, maxWidth, "…")
	}
	return Column{FullValue: value, DisplayValue: display}
}

// SplitLine is the structured result of columnizing one line
type SplitLine struct {
	Line    *source.Line
	Columns []Column
}

// ColumnCount returns the number of columns
func (s *SplitLine) ColumnCount() int {
	return len(s.Columns)
}

// Value returns the full value of column i, or "" when out of range
func (s *SplitLine) Value(i int) string {
	if i < 0 || i >= len(s.Columns) {
		return ""
	}
	return s.Columns[i].FullValue
}

// newSplit builds a split line with count columns, all empty
func newSplit(line *source.Line, count, maxWidth int) *SplitLine {
	cols := make([]Column, count)
	for i := range cols {
		cols[i] = NewColumn("", maxWidth)
	}
	return &SplitLine{Line: line, Columns: cols}
}
