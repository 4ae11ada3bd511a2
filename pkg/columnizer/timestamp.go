package columnizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/logformat"
)

// Column indices of the timestamp columnizer
const (
	TimestampColDate = iota
	TimestampColTime
	TimestampColDelta
	TimestampColMessage
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.000"
)

// TimestampColumnizer splits lines that carry a timestamp into date, time,
// delta and message columns. Displayed timestamps are shifted by a
// configurable offset. Delta is the distance in milliseconds to the
// timestamp of the previous line, looked up through the line context.
type TimestampColumnizer struct {
	parser   *logformat.TimestampParser
	maxWidth int
	offsetMs int
}

// NewTimestampColumnizer creates a time-shift capable columnizer
func NewTimestampColumnizer(maxWidth int) *TimestampColumnizer {
	return &TimestampColumnizer{
		parser:   logformat.NewTimestampParser(),
		maxWidth: maxWidth,
	}
}

func (c *TimestampColumnizer) Name() string { return "timestamp" }

func (c *TimestampColumnizer) Description() string {
	return "Splits lines with a leading timestamp into Date, Time, Delta and Message."
}

func (c *TimestampColumnizer) ColumnCount() int { return 4 }

func (c *TimestampColumnizer) ColumnNames() []string {
	return []string{"Date", "Time", "Delta", "Message"}
}

// SplitLine splits line. Lines without a timestamp keep their whole text in
// the message column.
func (c *TimestampColumnizer) SplitLine(lctx LineContext, line *source.Line) (*SplitLine, error) {
	split := newSplit(line, c.ColumnCount(), c.maxWidth)

	m, ok := c.parser.Find(line.Content)
	if !ok {
		split.Columns[TimestampColMessage] = NewColumn(line.Text(), c.maxWidth)
		return split, nil
	}

	shifted := m.Time.Add(time.Duration(c.offsetMs) * time.Millisecond)
	split.Columns[TimestampColDate] = NewColumn(shifted.Format(dateLayout), c.maxWidth)
	split.Columns[TimestampColTime] = NewColumn(shifted.Format(timeLayout), c.maxWidth)

	prefix := strings.TrimSpace(string(line.Content[:m.Start]))
	rest := strings.TrimSpace(string(line.Content[m.End:]))
	if strings.HasSuffix(prefix, "[") {
		prefix = strings.TrimSuffix(prefix, "[")
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "]"))
	}
	msg := rest
	if prefix != "" {
		msg = strings.TrimSpace(prefix + " " + rest)
	}
	split.Columns[TimestampColMessage] = NewColumn(msg, c.maxWidth)

	if delta, ok := c.delta(lctx, m.Time); ok {
		split.Columns[TimestampColDelta] = NewColumn(strconv.FormatInt(delta, 10), c.maxWidth)
	}
	return split, nil
}

// delta returns the milliseconds since the timestamp of the line before the
// context's current line
func (c *TimestampColumnizer) delta(lctx LineContext, t time.Time) (int64, bool) {
	if lctx == nil || lctx.LineNum() <= 0 {
		return 0, false
	}
	prev, err := lctx.GetLine(lctx.LineNum() - 1)
	if err != nil || prev == nil {
		return 0, false
	}
	pm, ok := c.parser.Find(prev.Content)
	if !ok {
		return 0, false
	}
	return t.Sub(pm.Time).Milliseconds(), true
}

// Timestamp returns the unshifted timestamp of line
func (c *TimestampColumnizer) Timestamp(line *source.Line) (time.Time, bool) {
	m, ok := c.parser.Find(line.Content)
	return m.Time, ok
}

func (c *TimestampColumnizer) IsTimeshiftImplemented() bool { return true }

func (c *TimestampColumnizer) TimeOffset() int { return c.offsetMs }

func (c *TimestampColumnizer) SetTimeOffset(ms int) { c.offsetMs = ms }

// PushValue takes an edited Date or Time column value and moves the offset by
// the difference to the value it replaced. Other columns leave it unchanged.
func (c *TimestampColumnizer) PushValue(_ LineContext, column int, value, oldValue string) (int, error) {
	var layout string
	switch column {
	case TimestampColDate:
		layout = dateLayout
	case TimestampColTime:
		layout = timeLayout
	default:
		return c.offsetMs, nil
	}

	newT, err := parseColumnTime(layout, value)
	if err != nil {
		return c.offsetMs, fmt.Errorf("push value %q: %w", value, err)
	}
	oldT, err := parseColumnTime(layout, oldValue)
	if err != nil {
		return c.offsetMs, fmt.Errorf("push old value %q: %w", oldValue, err)
	}

	c.offsetMs += int(newT.Sub(oldT).Milliseconds())
	return c.offsetMs, nil
}

func parseColumnTime(layout, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(layout, value)
	if err != nil && layout == timeLayout {
		// allow edits without milliseconds
		t, err = time.Parse("15:04:05", value)
	}
	return t, err
}
