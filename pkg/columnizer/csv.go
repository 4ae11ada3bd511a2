package columnizer

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TimelordUK/logrange/internal/source"
)

// CSVColumnizer splits delimiter-separated lines. With a header the column
// names come from line 0, read once in Init.
type CSVColumnizer struct {
	delimiter rune
	header    bool
	names     []string
	maxWidth  int
}

// NewCSVColumnizer creates a CSV columnizer. An empty delimiter means ','.
func NewCSVColumnizer(delimiter string, header bool, maxWidth int) (*CSVColumnizer, error) {
	d := ','
	if delimiter != "" {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) || r == '"' || r == '\r' || r == '\n' {
			return nil, fmt.Errorf("invalid csv delimiter %q", delimiter)
		}
		d = r
	}
	return &CSVColumnizer{
		delimiter: d,
		header:    header,
		names:     []string{"Column1"},
		maxWidth:  maxWidth,
	}, nil
}

func (c *CSVColumnizer) Name() string { return "csv" }

func (c *CSVColumnizer) Description() string {
	return "Splits CSV lines into columns, naming them from the header line."
}

func (c *CSVColumnizer) ColumnCount() int { return len(c.names) }

func (c *CSVColumnizer) ColumnNames() []string {
	return append([]string(nil), c.names...)
}

// Init reads line 0 to learn the column names and count
func (c *CSVColumnizer) Init(lctx LineContext) error {
	first, err := lctx.GetLine(0)
	if err != nil {
		return err
	}
	if first == nil {
		return nil
	}

	fields, err := c.fields(first.Text())
	if err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if !c.header || f == "" {
			f = fmt.Sprintf("Column%d", i+1)
		}
		names[i] = f
	}
	if len(names) > 0 {
		c.names = names
	}
	return nil
}

// SplitLine splits one record. Lines that fail to parse put the raw text in
// the first column; short records are padded with empty columns.
func (c *CSVColumnizer) SplitLine(_ LineContext, line *source.Line) (*SplitLine, error) {
	split := newSplit(line, c.ColumnCount(), c.maxWidth)

	fields, err := c.fields(line.Text())
	if err != nil || len(fields) == 0 {
		split.Columns[0] = NewColumn(line.Text(), c.maxWidth)
		return split, nil
	}

	for i, f := range fields {
		if i >= len(split.Columns) {
			// extra fields are folded into the last column
			last := &split.Columns[len(split.Columns)-1]
			*last = NewColumn(last.FullValue+string(c.delimiter)+f, c.maxWidth)
			continue
		}
		split.Columns[i] = NewColumn(f, c.maxWidth)
	}
	return split, nil
}

func (c *CSVColumnizer) fields(text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = c.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}
