package filter

import (
	"regexp"
	"strings"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// Matches reports whether line satisfies p. An absent line never matches,
// whatever the Invert flag says. With column restriction the line is split
// by p.Columnizer using lctx; columnizer errors are returned. If none of the
// configured columns exist the whole line is searched.
//
// Matches does not modify p. Unprepared params are prepared on a copy for
// every call, so long scans should call Prepare first.
func Matches(p *Params, line *source.Line, lctx columnizer.LineContext) (bool, error) {
	if line == nil {
		return false, nil
	}
	if !p.prepared {
		q := *p
		if err := q.Prepare(); err != nil {
			return false, err
		}
		p = &q
	}

	match, err := testMatch(p, line, lctx)
	if err != nil {
		return false, err
	}
	if p.Invert {
		match = !match
	}
	return match, nil
}

func testMatch(p *Params, line *source.Line, lctx columnizer.LineContext) (bool, error) {
	text, lower, rex := p.active()
	if text == "" {
		return false, nil
	}

	cols := p.resolveColumns()
	if len(cols) == 0 {
		return p.matchText(line.Text(), text, lower, rex), nil
	}

	split, err := p.Columnizer.SplitLine(lctx, line)
	if err != nil {
		return false, err
	}
	for _, i := range cols {
		if i >= split.ColumnCount() {
			continue
		}
		value := split.Columns[i].FullValue
		if p.ExactColumnMatch {
			if p.matchExact(value, text, rex) {
				return true, nil
			}
			continue
		}
		if p.matchText(value, text, lower, rex) {
			return true, nil
		}
	}
	return false, nil
}

func (p *Params) matchText(value, text, lower string, rex *regexp.Regexp) bool {
	switch {
	case p.IsRegex:
		return rex != nil && rex.MatchString(value)
	case p.IsFuzzy:
		if p.CaseSensitive {
			return fuzzyContains(value, text, p.FuzzyValue)
		}
		return fuzzyContains(strings.ToLower(value), lower, p.FuzzyValue)
	case p.CaseSensitive:
		return strings.Contains(value, text)
	default:
		return strings.Contains(strings.ToLower(value), lower)
	}
}

func (p *Params) matchExact(value, text string, rex *regexp.Regexp) bool {
	if p.IsRegex {
		if rex == nil {
			return false
		}
		loc := rex.FindStringIndex(value)
		return loc != nil && loc[0] == 0 && loc[1] == len(value)
	}
	if p.CaseSensitive {
		return value == text
	}
	return strings.EqualFold(value, text)
}
