package columnizer

import (
	"github.com/TimelordUK/logrange/internal/source"
)

// LineContext carries the line number being columnized and gives the
// columnizer access to sibling lines without knowing the source.
type LineContext interface {
	LineNum() int
	SetLineNum(n int)
	LineCount() int
	GetLine(n int) (*source.Line, error)
	FileName() string
}

// Callback binds a current line number to a line source
type Callback struct {
	src     source.LineSource
	lineNum int
}

// NewCallback creates a callback for src positioned before the first line
func NewCallback(src source.LineSource) *Callback {
	return &Callback{src: src, lineNum: -1}
}

// LineNum returns the current line number
func (c *Callback) LineNum() int {
	return c.lineNum
}

// SetLineNum sets the current line number
func (c *Callback) SetLineNum(n int) {
	c.lineNum = n
}

// LineCount returns the number of lines currently in the source
func (c *Callback) LineCount() int {
	return c.src.LineCount()
}

// GetLine looks up a sibling line without waiting
func (c *Callback) GetLine(n int) (*source.Line, error) {
	return c.src.GetLine(n)
}

// FileName returns the path of the source, if any
func (c *Callback) FileName() string {
	return source.PathOf(c.src)
}
