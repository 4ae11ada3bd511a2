package source

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when refreshing a source that has been closed.
	ErrClosed = errors.New("source closed")
	// ErrTruncated is returned when a followed file shrinks. Lines already
	// reported stay readable; the source stops waiting for new ones.
	ErrTruncated = errors.New("source truncated")
)

// LogLevel represents a log severity level
type LogLevel int

const (
	LevelUnknown LogLevel = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the canonical upper-case level name
func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return ""
}

// Line represents a single immutable line of a source
type Line struct {
	Content []byte
	Number  int // 0-based line number in the source
	Level   LogLevel
}

// Text returns the line content as a string
func (l *Line) Text() string {
	return string(l.Content)
}

// LineSource is the core abstraction for accessing lines.
// A nil *Line with a nil error means the line is not present.
// Once a line is reported present its content never changes.
type LineSource interface {
	// LineCount returns the number of lines currently present
	LineCount() int

	// GetLine returns line at index (0-based) without waiting
	GetLine(index int) (*Line, error)

	// GetLineWaiting returns line at index, waiting while the source may still
	// produce it. Timeouts and cancellation are reported as an absent line.
	GetLineWaiting(ctx context.Context, index int) (*Line, error)
}

// Named is implemented by sources backed by a named file or stream
type Named interface {
	Path() string
}

// PathOf returns the path of src, or "" when it has none
func PathOf(src LineSource) string {
	if n, ok := src.(Named); ok {
		return n.Path()
	}
	return ""
}
