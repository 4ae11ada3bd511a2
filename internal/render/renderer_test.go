package render

import (
	"strings"
	"testing"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

func split(line *source.Line, values ...string) *columnizer.SplitLine {
	s := &columnizer.SplitLine{Line: line}
	for _, v := range values {
		s.Columns = append(s.Columns, columnizer.NewColumn(v, 0))
	}
	return s
}

func TestPlainRenderer(t *testing.T) {
	r := NewPlainRenderer()
	line := &source.Line{Content: []byte("a b c")}

	if got := r.Render(line, nil); got != "a b c" {
		t.Errorf("no split = %q", got)
	}
	if got := r.Render(line, split(line, "a", "b c")); got != "a\tb c" {
		t.Errorf("columns = %q", got)
	}
	if got := r.Render(line, split(line, "only")); got != "a b c" {
		t.Errorf("single column = %q", got)
	}
}

func TestColumnRenderer(t *testing.T) {
	r := NewColumnRenderer(config.DefaultConfig())
	line := &source.Line{Content: []byte("[ERR] disk failed"), Number: 41}

	got := r.Render(line, split(line, "ERROR", "disk failed"))
	for _, want := range []string{"ERROR", "disk failed", "│"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render = %q, missing %q", got, want)
		}
	}

	r.SetLineNumbers(true, 4)
	got = r.Render(line, nil)
	if !strings.Contains(got, "  42") || !strings.Contains(got, "[ERR] disk failed") {
		t.Errorf("Render with line numbers = %q", got)
	}
}

func TestIsSyntaxHighlightable(t *testing.T) {
	tests := map[string]bool{
		"main.go":         true,
		"config.YAML":     true,
		"Makefile":        true,
		"app.log":         false,
		"data.csv":        false,
		"/var/log/syslog": false,
	}
	for name, want := range tests {
		if got := IsSyntaxHighlightable(name); got != want {
			t.Errorf("IsSyntaxHighlightable(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSyntaxRenderer(t *testing.T) {
	r := NewSyntaxRenderer("main.go")
	if r.LexerName() != "Go" {
		t.Errorf("lexer = %q, want Go", r.LexerName())
	}
	line := &source.Line{Content: []byte("package main")}
	got := r.Render(line, nil)
	if !strings.Contains(got, "package") || strings.Contains(got, "\n") {
		t.Errorf("Render = %q", got)
	}
	if r.Render(&source.Line{}, nil) != "" {
		t.Error("empty line should render empty")
	}
}
