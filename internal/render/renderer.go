package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
	"github.com/TimelordUK/logrange/pkg/logformat"
)

// Renderer turns a line and its columns into printable text.
// split may be nil when the line was not columnized.
type Renderer interface {
	Render(line *source.Line, split *columnizer.SplitLine) string
}

// ColumnRenderer colors lines based on log level and separates columns
type ColumnRenderer struct {
	detector        *logformat.LevelDetector
	styles          map[source.LogLevel]lipgloss.Style
	separator       string
	lineNumberStyle lipgloss.Style
	showLineNumbers bool
	lineNumWidth    int
}

// NewColumnRenderer creates a renderer with config
func NewColumnRenderer(cfg *config.Config) *ColumnRenderer {
	styles := map[source.LogLevel]lipgloss.Style{
		source.LevelUnknown: lipgloss.NewStyle(),
		source.LevelTrace:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Trace)),
		source.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Debug)),
		source.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Info)),
		source.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Warn)),
		source.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Error)),
		source.LevelFatal:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Fatal)),
	}

	sep := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.ColumnSeparator)).Render(" │ ")

	return &ColumnRenderer{
		detector:        logformat.NewLevelDetector(&cfg.LogLevels),
		styles:          styles,
		separator:       sep,
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.LineNumbers)),
	}
}

// SetLineNumbers enables a right-aligned line number gutter of width digits
func (r *ColumnRenderer) SetLineNumbers(show bool, width int) {
	r.showLineNumbers = show
	r.lineNumWidth = width
}

// Render applies log level styling to the columns of a line
func (r *ColumnRenderer) Render(line *source.Line, split *columnizer.SplitLine) string {
	level := line.Level
	if level == source.LevelUnknown {
		level = r.detector.Detect(line.Content)
	}
	style := r.styles[level]

	var b strings.Builder
	if r.showLineNumbers {
		// 1-based for display
		b.WriteString(r.lineNumberStyle.Render(fmt.Sprintf("%*d ", r.lineNumWidth, line.Number+1)))
	}

	if split == nil || split.ColumnCount() <= 1 {
		b.WriteString(style.Render(line.Text()))
		return b.String()
	}

	for i, col := range split.Columns {
		if i > 0 {
			b.WriteString(r.separator)
		}
		b.WriteString(style.Render(col.DisplayValue))
	}
	return b.String()
}

// PlainRenderer renders without styling, columns separated by tabs
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render returns the line content, or its tab-separated columns
func (r *PlainRenderer) Render(line *source.Line, split *columnizer.SplitLine) string {
	if split == nil || split.ColumnCount() <= 1 {
		return line.Text()
	}
	values := make([]string, split.ColumnCount())
	for i := range values {
		values[i] = split.Value(i)
	}
	return strings.Join(values, "\t")
}
