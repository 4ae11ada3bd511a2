package columnizer

import (
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/TimelordUK/logrange/internal/source"
)

// DefaultJSONFields are used when no fields are configured
var DefaultJSONFields = []string{"time", "level", "msg"}

// JSONColumnizer splits JSON lines into one column per configured field.
// Field names match object keys case-insensitively. Lines that are not JSON
// objects keep their text in the last column.
type JSONColumnizer struct {
	fields   []string
	maxWidth int
}

// NewJSONColumnizer creates a JSON lines columnizer
func NewJSONColumnizer(fields []string, maxWidth int) *JSONColumnizer {
	if len(fields) == 0 {
		fields = DefaultJSONFields
	}
	return &JSONColumnizer{
		fields:   append([]string(nil), fields...),
		maxWidth: maxWidth,
	}
}

func (c *JSONColumnizer) Name() string { return "json" }

func (c *JSONColumnizer) Description() string {
	return "Splits JSON lines into the configured fields."
}

func (c *JSONColumnizer) ColumnCount() int { return len(c.fields) }

func (c *JSONColumnizer) ColumnNames() []string {
	return append([]string(nil), c.fields...)
}

func (c *JSONColumnizer) SplitLine(_ LineContext, line *source.Line) (*SplitLine, error) {
	split := newSplit(line, c.ColumnCount(), c.maxWidth)

	parsed, err := oj.Parse(line.Content)
	obj, ok := parsed.(map[string]any)
	if err != nil || !ok {
		split.Columns[len(split.Columns)-1] = NewColumn(line.Text(), c.maxWidth)
		return split, nil
	}

	for i, field := range c.fields {
		v, found := lookupField(obj, field)
		if !found {
			continue
		}
		split.Columns[i] = NewColumn(fieldString(v), c.maxWidth)
	}
	return split, nil
}

func lookupField(obj map[string]any, field string) (any, bool) {
	if v, ok := obj[field]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, field) {
			return v, true
		}
	}
	return nil, false
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return oj.JSON(t)
	}
}
