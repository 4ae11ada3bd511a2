package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// Params describe one filter or search. The runtime flags IsRangeSearch and
// IsInRange are flipped by range scans; scans work on clones so a caller's
// Params are never modified.
type Params struct {
	SearchText      string
	RangeSearchText string // marks the start of a range

	IsRegex          bool
	CaseSensitive    bool
	IsFuzzy          bool
	FuzzyValue       int // tolerated edit distance in fuzzy mode
	Invert           bool
	ColumnRestrict   bool
	ExactColumnMatch bool
	Columns          []string // column names searched when ColumnRestrict is set

	Columnizer columnizer.Columnizer

	// When IsRangeSearch is set the predicate tests SearchText inside a range
	// and RangeSearchText outside of one.
	IsRangeSearch bool
	IsInRange     bool

	prepared             bool
	rex                  *regexp.Regexp
	rangeRex             *regexp.Regexp
	lowerSearchText      string
	lowerRangeSearchText string
}

// Prepare compiles regular expressions and lower-cases the search texts.
// It must be called again after changing a text or flag.
func (p *Params) Prepare() error {
	p.rex, p.rangeRex = nil, nil
	if p.IsRegex {
		var err error
		if p.rex, err = compile(p.SearchText, p.CaseSensitive); err != nil {
			return fmt.Errorf("search text: %w", err)
		}
		if p.rangeRex, err = compile(p.RangeSearchText, p.CaseSensitive); err != nil {
			return fmt.Errorf("range search text: %w", err)
		}
	}
	p.lowerSearchText = strings.ToLower(p.SearchText)
	p.lowerRangeSearchText = strings.ToLower(p.RangeSearchText)
	p.prepared = true
	return nil
}

func compile(text string, caseSensitive bool) (*regexp.Regexp, error) {
	if text == "" {
		return nil, nil
	}
	if !caseSensitive {
		text = "(?i)" + text
	}
	return regexp.Compile(text)
}

// CloneWithCurrentColumnizer returns a copy equal to p in every field,
// sharing the columnizer instance. Changing the copy never affects p.
func (p *Params) CloneWithCurrentColumnizer() *Params {
	c := *p
	if p.Columns != nil {
		c.Columns = make([]string, len(p.Columns))
		copy(c.Columns, p.Columns)
	}
	return &c
}

// IsRangeConfigured reports whether both range texts are set
func (p *Params) IsRangeConfigured() bool {
	return strings.TrimSpace(p.SearchText) != "" && strings.TrimSpace(p.RangeSearchText) != ""
}

// active returns the text, lower-cased text and regex tested in the current mode
func (p *Params) active() (string, string, *regexp.Regexp) {
	if p.IsRangeSearch && !p.IsInRange {
		return p.RangeSearchText, p.lowerRangeSearchText, p.rangeRex
	}
	return p.SearchText, p.lowerSearchText, p.rex
}

// resolveColumns maps Columns to indices of the columnizer's column names
func (p *Params) resolveColumns() []int {
	if !p.ColumnRestrict || p.Columnizer == nil || len(p.Columns) == 0 {
		return nil
	}
	names := p.Columnizer.ColumnNames()
	var idx []int
	for _, want := range p.Columns {
		for i, name := range names {
			if strings.EqualFold(strings.TrimSpace(want), name) {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}
