package columnizer

import (
	"fmt"
	"regexp"

	"github.com/TimelordUK/logrange/internal/source"
)

// RegexColumnizer splits lines with a pattern whose named groups become the
// columns. Lines that don't match keep their text in the last column.
type RegexColumnizer struct {
	re       *regexp.Regexp
	names    []string
	groups   []int // submatch index of each column
	maxWidth int
}

// NewRegexColumnizer compiles pattern; it needs at least one named group
func NewRegexColumnizer(pattern string, maxWidth int) (*RegexColumnizer, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regex columnizer: %w", err)
	}

	c := &RegexColumnizer{re: re, maxWidth: maxWidth}
	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		c.names = append(c.names, name)
		c.groups = append(c.groups, i)
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("regex columnizer: pattern %q has no named groups", pattern)
	}
	return c, nil
}

func (c *RegexColumnizer) Name() string { return "regex" }

func (c *RegexColumnizer) Description() string {
	return "Splits lines using the named groups of a regular expression."
}

func (c *RegexColumnizer) ColumnCount() int { return len(c.names) }

func (c *RegexColumnizer) ColumnNames() []string {
	return append([]string(nil), c.names...)
}

func (c *RegexColumnizer) SplitLine(_ LineContext, line *source.Line) (*SplitLine, error) {
	split := newSplit(line, c.ColumnCount(), c.maxWidth)

	m := c.re.FindSubmatchIndex(line.Content)
	if m == nil {
		split.Columns[len(split.Columns)-1] = NewColumn(line.Text(), c.maxWidth)
		return split, nil
	}

	for i, g := range c.groups {
		start, end := m[2*g], m[2*g+1]
		if start < 0 {
			continue
		}
		split.Columns[i] = NewColumn(string(line.Content[start:end]), c.maxWidth)
	}
	return split, nil
}
