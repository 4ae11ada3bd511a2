package logformat

import (
	"regexp"
	"strconv"
	"time"
)

// TimestampParser detects and parses timestamps from log lines
type TimestampParser struct {
	patterns []timestampPattern
	now      func() time.Time
}

type timestampPattern struct {
	regex   *regexp.Regexp
	layouts []string
}

// Match is a timestamp found in a line
type Match struct {
	Time  time.Time
	Start int // byte offset of the timestamp text
	End   int // byte offset just past the timestamp text
}

const (
	layoutUnix   = "unix"
	layoutUnixMs = "unix_ms"
)

// NewTimestampParser creates a parser with common timestamp formats
func NewTimestampParser() *TimestampParser {
	return &TimestampParser{
		now: time.Now,
		patterns: []timestampPattern{
			// 2024-01-15T10:30:45.123Z
			// 2024-01-15T10:30:45.123+00:00
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{1,9})?(?:Z|[+-]\d{2}:\d{2})?)`),
				layouts: []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"},
			},
			// 2024-01-15 10:30:45.123 or 2024-01-15 10:30:45,123
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d{3})?)`),
				layouts: []string{"2006-01-02 15:04:05.000", "2006-01-02 15:04:05,000", "2006-01-02 15:04:05"},
			},
			// Jan 15 10:30:45
			{
				regex:   regexp.MustCompile(`([A-Z][a-z]{2} +\d{1,2} \d{2}:\d{2}:\d{2})`),
				layouts: []string{"Jan 2 15:04:05", "Jan  2 15:04:05"},
			},
			// 15/Jan/2024:10:30:45 +0000
			{
				regex:   regexp.MustCompile(`(\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4})`),
				layouts: []string{"02/Jan/2006:15:04:05 -0700"},
			},
			// 1705315845123
			{
				regex:   regexp.MustCompile(`^(\d{13})(?:\D|$)`),
				layouts: []string{layoutUnixMs},
			},
			// 1705315845
			{
				regex:   regexp.MustCompile(`^(\d{10})(?:\D|$)`),
				layouts: []string{layoutUnix},
			},
			// 10:30:45.123
			{
				regex:   regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}(?:\.\d{3})?)`),
				layouts: []string{"15:04:05.000", "15:04:05"},
			},
		},
	}
}

// Parse attempts to extract a timestamp from a log line
func (p *TimestampParser) Parse(content []byte) *time.Time {
	m, ok := p.Find(content)
	if !ok {
		return nil
	}
	return &m.Time
}

// Find locates and parses the first recognised timestamp in content
func (p *TimestampParser) Find(content []byte) (Match, bool) {
	for _, pattern := range p.patterns {
		loc := pattern.regex.FindSubmatchIndex(content)
		if len(loc) < 4 || loc[2] < 0 {
			continue
		}
		text := string(content[loc[2]:loc[3]])
		for _, layout := range pattern.layouts {
			if t, ok := p.parseLayout(layout, text); ok {
				return Match{Time: t, Start: loc[2], End: loc[3]}, true
			}
		}
	}
	return Match{}, false
}

func (p *TimestampParser) parseLayout(layout, text string) (time.Time, bool) {
	switch layout {
	case layoutUnix, layoutUnixMs:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if layout == layoutUnixMs {
			return time.UnixMilli(n), true
		}
		return time.Unix(n, 0), true
	}

	t, err := time.Parse(layout, text)
	if err != nil {
		return time.Time{}, false
	}

	now := p.now()
	switch layout {
	case "15:04:05", "15:04:05.000":
		// time only, assume today
		t = time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
	case "Jan 2 15:04:05", "Jan  2 15:04:05":
		// syslog has no year
		t = time.Date(now.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, time.Local)
	}
	return t, true
}

// FormatTimeWithDate formats a timestamp with date for display
func FormatTimeWithDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
