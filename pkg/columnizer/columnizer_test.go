package columnizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
)

func lineOf(n int, text string) *source.Line {
	return &source.Line{Content: []byte(text), Number: n}
}

func values(s *SplitLine) []string {
	out := make([]string, s.ColumnCount())
	for i := range s.Columns {
		out[i] = s.Value(i)
	}
	return out
}

func equal(a, b []string) bool {
	return strings.Join(a, "\x00") == strings.Join(b, "\x00") && len(a) == len(b)
}

func TestNewColumnTruncatesDisplay(t *testing.T) {
	c := NewColumn("abcdefghij", 5)
	if c.FullValue != "abcdefghij" {
		t.Errorf("FullValue = %q", c.FullValue)
	}
	if c.DisplayValue != "abcd…" {
		t.Errorf("DisplayValue = %q, want %q", c.DisplayValue, "abcd…")
	}
	if c := NewColumn("short", 0); c.DisplayValue != "short" {
		t.Errorf("default width truncated %q", c.DisplayValue)
	}
}

func TestDefaultColumnizer(t *testing.T) {
	c := NewDefaultColumnizer(0)
	split, err := c.SplitLine(nil, lineOf(0, "hello world"))
	if err != nil {
		t.Fatal(err)
	}
	if !equal(values(split), []string{"hello world"}) {
		t.Errorf("columns = %q", values(split))
	}
	if c.ColumnCount() != 1 || c.ColumnNames()[0] != "Text" {
		t.Errorf("names = %v", c.ColumnNames())
	}
}

func TestTimestampColumnizerSplit(t *testing.T) {
	src := source.NewMemorySource("ts",
		"2024-01-15 10:30:45.000 first",
		"2024-01-15 10:30:46.250 [INF] second",
		"no timestamp here",
		"[2024-01-15 10:30:47.000] bracketed",
	)
	lctx := NewCallback(src)
	c := NewTimestampColumnizer(0)

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"2024-01-15", "10:30:45.000", "", "first"}},
		{1, []string{"2024-01-15", "10:30:46.250", "1250", "[INF] second"}},
		{2, []string{"", "", "", "no timestamp here"}},
		// previous line has no timestamp: no delta
		{3, []string{"2024-01-15", "10:30:47.000", "", "bracketed"}},
	}

	for _, tt := range tests {
		line, _ := src.GetLine(tt.n)
		lctx.SetLineNum(tt.n)
		split, err := c.SplitLine(lctx, line)
		if err != nil {
			t.Fatalf("line %d: %v", tt.n, err)
		}
		if got := values(split); !equal(got, tt.want) {
			t.Errorf("line %d = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTimestampColumnizerShift(t *testing.T) {
	c := NewTimestampColumnizer(0)
	c.SetTimeOffset(-90 * 60 * 1000)

	split, err := c.SplitLine(nil, lineOf(0, "2024-01-15 01:00:00.000 x"))
	if err != nil {
		t.Fatal(err)
	}
	if split.Value(TimestampColDate) != "2024-01-14" || split.Value(TimestampColTime) != "23:30:00.000" {
		t.Errorf("shifted = %q", values(split))
	}
}

func TestTimestampColumnizerPushValue(t *testing.T) {
	tests := []struct {
		name     string
		column   int
		value    string
		oldValue string
		want     int
		wantErr  bool
	}{
		{"time forward", TimestampColTime, "10:00:05.000", "10:00:00.000", 5000, false},
		{"time without ms", TimestampColTime, "09:59:00", "10:00:00.000", -60000, false},
		{"date back one day", TimestampColDate, "2024-01-14", "2024-01-15", -86400000, false},
		{"message ignored", TimestampColMessage, "a", "b", 0, false},
		{"bad value", TimestampColTime, "soon", "10:00:00.000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTimestampColumnizer(0)
			got, err := c.PushValue(nil, tt.column, tt.value, tt.oldValue)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || c.TimeOffset() != tt.want {
				t.Errorf("offset = %d (stored %d), want %d", got, c.TimeOffset(), tt.want)
			}
		})
	}
}

func TestAsTimeshifter(t *testing.T) {
	if _, ok := AsTimeshifter(NewTimestampColumnizer(0)); !ok {
		t.Error("timestamp columnizer should shift time")
	}
	if _, ok := AsTimeshifter(NewDefaultColumnizer(0)); ok {
		t.Error("default columnizer should not shift time")
	}
}

func TestCSVColumnizer(t *testing.T) {
	src := source.NewMemorySource("data.csv",
		"time,level,msg",
		`10:00,INFO,"hello, world"`,
		"10:01,WARN",
		"10:02,ERROR,a,b",
	)
	c, err := NewCSVColumnizer(",", true, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Init(NewCallback(src)); err != nil {
		t.Fatal(err)
	}
	if !equal(c.ColumnNames(), []string{"time", "level", "msg"}) {
		t.Fatalf("names = %v", c.ColumnNames())
	}

	tests := []struct {
		n    int
		want []string
	}{
		{1, []string{"10:00", "INFO", "hello, world"}},
		{2, []string{"10:01", "WARN", ""}},
		{3, []string{"10:02", "ERROR", "a,b"}},
	}
	for _, tt := range tests {
		line, _ := src.GetLine(tt.n)
		split, err := c.SplitLine(nil, line)
		if err != nil {
			t.Fatal(err)
		}
		if got := values(split); !equal(got, tt.want) {
			t.Errorf("line %d = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCSVColumnizerWithoutHeader(t *testing.T) {
	src := source.NewMemorySource("data.tsv", "a\tb")
	c, err := NewCSVColumnizer("\t", false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Init(NewCallback(src)); err != nil {
		t.Fatal(err)
	}
	if !equal(c.ColumnNames(), []string{"Column1", "Column2"}) {
		t.Errorf("names = %v", c.ColumnNames())
	}
}

func TestRegexColumnizer(t *testing.T) {
	c, err := NewRegexColumnizer(`^(?P<level>\w+): (?P<msg>.*)$`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equal(c.ColumnNames(), []string{"level", "msg"}) {
		t.Fatalf("names = %v", c.ColumnNames())
	}

	split, _ := c.SplitLine(nil, lineOf(0, "WARN: low disk"))
	if !equal(values(split), []string{"WARN", "low disk"}) {
		t.Errorf("match = %q", values(split))
	}
	split, _ = c.SplitLine(nil, lineOf(1, "garbage"))
	if !equal(values(split), []string{"", "garbage"}) {
		t.Errorf("no match = %q", values(split))
	}

	if _, err := NewRegexColumnizer(`(\w+)`, 0); err == nil {
		t.Error("pattern without named groups accepted")
	}
	if _, err := NewRegexColumnizer(`(?P<x>`, 0); err == nil {
		t.Error("invalid pattern accepted")
	}
}

func TestJSONColumnizer(t *testing.T) {
	c := NewJSONColumnizer(nil, 0)

	tests := []struct {
		line string
		want []string
	}{
		{`{"time":"10:00","level":"info","msg":"ok"}`, []string{"10:00", "info", "ok"}},
		{`{"Time":"10:01","LEVEL":"warn","msg":{"a":1}}`, []string{"10:01", "warn", `{"a":1}`}},
		{`{"level":"debug","n":3}`, []string{"", "debug", ""}},
		{`not json`, []string{"", "", "not json"}},
		{`[1,2]`, []string{"", "", "[1,2]"}},
	}
	for _, tt := range tests {
		split, err := c.SplitLine(nil, lineOf(0, tt.line))
		if err != nil {
			t.Fatal(err)
		}
		if got := values(split); !equal(got, tt.want) {
			t.Errorf("%s = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLevelColumnizer(t *testing.T) {
	c := NewLevelColumnizer(&config.DefaultConfig().LogLevels, 0)
	split, err := c.SplitLine(nil, lineOf(0, "[ERROR] failed"))
	if err != nil {
		t.Fatal(err)
	}
	if !equal(values(split), []string{"ERROR", "[ERROR] failed"}) {
		t.Errorf("columns = %q", values(split))
	}
}

func TestRegistry(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Columnizer.RegexPattern = `(?P<all>.*)`

	for _, name := range Names() {
		a, err := New(name, cfg)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		b, _ := New(name, cfg)
		if a == b {
			t.Errorf("New(%q) returned the same instance twice", name)
		}
		if a.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, a.Name())
		}
	}

	if c, err := New("", cfg); err != nil || c.Name() != "default" {
		t.Errorf("New(\"\") = %v, %v", c, err)
	}
	if _, err := New("nope", cfg); !errors.Is(err, ErrUnknown) {
		t.Errorf("New(nope) err = %v, want ErrUnknown", err)
	}
}

func TestCallback(t *testing.T) {
	src := source.NewMemorySource("f.log", "a", "b")
	cb := NewCallback(src)

	if cb.LineNum() != -1 {
		t.Errorf("initial LineNum = %d", cb.LineNum())
	}
	cb.SetLineNum(1)
	if cb.LineNum() != 1 || cb.LineCount() != 2 || cb.FileName() != "f.log" {
		t.Errorf("callback = %d %d %q", cb.LineNum(), cb.LineCount(), cb.FileName())
	}
	if line, _ := cb.GetLine(0); line == nil || line.Text() != "a" {
		t.Errorf("GetLine(0) = %v", line)
	}
}
