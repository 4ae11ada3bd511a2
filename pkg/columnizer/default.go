package columnizer

import (
	"github.com/TimelordUK/logrange/internal/source"
)

// DefaultColumnizer puts the whole line into a single Text column
type DefaultColumnizer struct {
	maxWidth int
}

// NewDefaultColumnizer creates a single-column columnizer
func NewDefaultColumnizer(maxWidth int) *DefaultColumnizer {
	return &DefaultColumnizer{maxWidth: maxWidth}
}

func (c *DefaultColumnizer) Name() string { return "default" }

func (c *DefaultColumnizer) Description() string {
	return "No splitting. The whole line is displayed in a single column."
}

func (c *DefaultColumnizer) ColumnCount() int { return 1 }

func (c *DefaultColumnizer) ColumnNames() []string { return []string{"Text"} }

func (c *DefaultColumnizer) SplitLine(_ LineContext, line *source.Line) (*SplitLine, error) {
	return &SplitLine{
		Line:    line,
		Columns: []Column{NewColumn(line.Text(), c.maxWidth)},
	}, nil
}
