package columnizer

import (
	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/logformat"
)

// LevelColumnizer prefixes each line with its detected log level
type LevelColumnizer struct {
	detector *logformat.LevelDetector
	maxWidth int
}

// NewLevelColumnizer creates a columnizer using the configured level patterns
func NewLevelColumnizer(levels *config.LogLevelConfig, maxWidth int) *LevelColumnizer {
	return &LevelColumnizer{
		detector: logformat.NewLevelDetector(levels),
		maxWidth: maxWidth,
	}
}

func (c *LevelColumnizer) Name() string { return "level" }

func (c *LevelColumnizer) Description() string {
	return "Adds a Level column detected from the line text."
}

func (c *LevelColumnizer) ColumnCount() int { return 2 }

func (c *LevelColumnizer) ColumnNames() []string { return []string{"Level", "Message"} }

func (c *LevelColumnizer) SplitLine(_ LineContext, line *source.Line) (*SplitLine, error) {
	level := line.Level
	if level == source.LevelUnknown {
		level = c.detector.Detect(line.Content)
	}
	return &SplitLine{
		Line: line,
		Columns: []Column{
			NewColumn(level.String(), c.maxWidth),
			NewColumn(line.Text(), c.maxWidth),
		},
	}, nil
}
