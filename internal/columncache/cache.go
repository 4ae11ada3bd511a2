// Package columncache memoizes the most recent column split of a view.
package columncache

import (
	"context"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// Cache holds a single split line, keyed by columnizer instance, line number
// and the line context's current line. It is not safe for concurrent use;
// confine a cache to the goroutine that owns the view.
type Cache struct {
	lastColumnizer columnizer.Columnizer
	lastLineNumber int
	cached         *columnizer.SplitLine
}

// New creates an empty cache
func New() *Cache {
	return &Cache{lastLineNumber: -1}
}

// Get returns the columns of lineNumber, splitting the line again when the
// columnizer changed, a different line is cached, or lctx points at another
// line. A line that is not present yields nil and leaves lctx untouched.
// Columnizer errors are returned unchanged.
func (c *Cache) Get(ctx context.Context, src source.LineSource, lineNumber int,
	cz columnizer.Columnizer, lctx columnizer.LineContext) (*columnizer.SplitLine, error) {

	if c.lastColumnizer == cz &&
		!(c.lastLineNumber != lineNumber && c.cached != nil) &&
		lctx.LineNum() == lineNumber {
		return c.cached, nil
	}

	c.lastColumnizer = cz
	c.lastLineNumber = lineNumber

	line, err := src.GetLineWaiting(ctx, lineNumber)
	if err != nil {
		c.Reset()
		return nil, err
	}
	if line == nil {
		c.cached = nil
		return nil, nil
	}

	// the columnizer must observe the context of the line it splits
	lctx.SetLineNum(lineNumber)
	split, err := cz.SplitLine(lctx, line)
	if err != nil {
		c.Reset()
		return nil, err
	}
	c.cached = split
	return split, nil
}

// Reset empties the cache so the next Get recomputes
func (c *Cache) Reset() {
	c.lastColumnizer = nil
	c.lastLineNumber = -1
	c.cached = nil
}
