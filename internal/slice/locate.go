package slice

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/logformat"
)

// leadingDate matches a dated start time, whose dashes don't separate the range
var leadingDate = regexp.MustCompile(`^\s*\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}(:\d{2})?`)

// Locator resolves line references like ".", "$", "$-100", ".+5", "13:00"
// or "500" against one source
type Locator struct {
	src     source.LineSource
	parser  *logformat.TimestampParser
	current int
	now     func() time.Time
}

// NewLocator creates a locator; current is the line "." refers to
func NewLocator(src source.LineSource, current int) *Locator {
	return &Locator{
		src:     src,
		parser:  logformat.NewTimestampParser(),
		current: current,
		now:     time.Now,
	}
}

// ParseRange parses "start-end" into a half-open line span. A missing or
// empty end means "$", as does an end time after the last timestamp. Line
// numbers in the input are 1-based.
func (l *Locator) ParseRange(ctx context.Context, rangeStr string) (int, int, error) {
	total := l.src.LineCount()

	// the separator is the first dash after any leading date not part of $-N or .-N
	dashIdx := -1
	from := 0
	if m := leadingDate.FindStringIndex(rangeStr); m != nil {
		from = m[1]
	}
	for i := from; i < len(rangeStr); i++ {
		if rangeStr[i] == '-' {
			if i > 0 && (rangeStr[i-1] == '$' || rangeStr[i-1] == '.') &&
				i+1 < len(rangeStr) && rangeStr[i+1] >= '0' && rangeStr[i+1] <= '9' {
				continue
			}
			dashIdx = i
			break
		}
	}

	startStr, endStr := rangeStr, "$"
	if dashIdx >= 0 {
		startStr = rangeStr[:dashIdx]
		endStr = rangeStr[dashIdx+1:]
	}

	start, err := l.lineRef(ctx, startStr, total, false)
	if err != nil {
		return 0, 0, err
	}
	end, err := l.lineRef(ctx, endStr, total, true)
	if err != nil {
		return 0, 0, err
	}
	// an absolute end is inclusive in the input
	if isAbsolute(endStr) {
		end++
	}

	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start >= end {
		return 0, 0, fmt.Errorf("invalid range %q: %d-%d", rangeStr, start, end)
	}
	return start, end, nil
}

func isAbsolute(ref string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(ref))
	return err == nil
}

// lineRef resolves one reference to a 0-based line number. isEnd selects
// the end-of-range reading of empty and out-of-range time references.
func (l *Locator) lineRef(ctx context.Context, ref string, total int, isEnd bool) (int, error) {
	ref = strings.TrimSpace(ref)

	switch {
	case ref == "" && isEnd:
		return total, nil
	case ref == "":
		return 0, nil
	case ref == ".":
		return l.current, nil
	case ref == "$":
		return total, nil
	case strings.HasPrefix(ref, "$"):
		offset, err := strconv.Atoi(ref[1:])
		if err != nil {
			return 0, fmt.Errorf("bad offset %q: %w", ref, err)
		}
		return total + offset, nil
	case strings.HasPrefix(ref, "."):
		offset, err := strconv.Atoi(ref[1:])
		if err != nil {
			return 0, fmt.Errorf("bad offset %q: %w", ref, err)
		}
		return l.current + offset, nil
	case strings.Contains(ref, ":"):
		target, ok := l.parseTimeInput(ref)
		if !ok {
			return 0, fmt.Errorf("bad time %q", ref)
		}
		line, err := FindLineAtTime(ctx, l.src, l.parser, target)
		if err != nil {
			return 0, err
		}
		if line < 0 && isEnd {
			return total, nil
		}
		if line < 0 {
			return 0, fmt.Errorf("no line at or after %s", logformat.FormatTimeWithDate(&target))
		}
		return line, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad line %q: %w", ref, err)
	}
	return n - 1, nil
}

// parseTimeInput parses user time input. Times without a date take the
// date of the first timestamped line, or today.
func (l *Locator) parseTimeInput(input string) (time.Time, bool) {
	layouts := []string{
		"15:04:05",
		"15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, input)
		if err != nil {
			continue
		}
		if layout == "15:04:05" || layout == "15:04" {
			day := l.now()
			if first := l.firstTimestamp(); first != nil {
				day = *first
			}
			t = time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, day.Location())
		}
		return t, true
	}
	return time.Time{}, false
}

func (l *Locator) firstTimestamp() *time.Time {
	for i := 0; i < l.src.LineCount(); i++ {
		line, err := l.src.GetLine(i)
		if err != nil || line == nil {
			return nil
		}
		if ts := l.parser.Parse(line.Content); ts != nil {
			return ts
		}
	}
	return nil
}

// FindLineAtTime returns the first line stamped at or after target, or -1.
// Lines are assumed to be in time order; lines without a timestamp belong to
// the stamped line before them.
func FindLineAtTime(ctx context.Context, src source.LineSource, parser *logformat.TimestampParser, target time.Time) (int, error) {
	lo, hi := 0, src.LineCount()
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		mid := int(uint(lo+hi) >> 1)
		_, ts, err := nextTimestamp(src, parser, mid, hi)
		if err != nil {
			return -1, err
		}
		if ts == nil || !ts.Before(target) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	// lo may sit on a continuation line
	n, ts, err := nextTimestamp(src, parser, lo, src.LineCount())
	if err != nil || ts == nil {
		return -1, err
	}
	return n, nil
}

// nextTimestamp finds the first stamped line in [from, limit)
func nextTimestamp(src source.LineSource, parser *logformat.TimestampParser, from, limit int) (int, *time.Time, error) {
	for i := from; i < limit; i++ {
		line, err := src.GetLine(i)
		if err != nil {
			return -1, nil, err
		}
		if line == nil {
			break
		}
		if ts := parser.Parse(line.Content); ts != nil {
			return i, ts, nil
		}
	}
	return -1, nil, nil
}
