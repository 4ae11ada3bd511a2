package render

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"

	"github.com/TimelordUK/logrange/internal/source"
	"github.com/TimelordUK/logrange/pkg/columnizer"
)

// SyntaxRenderer applies syntax highlighting based on file type. Columns are
// ignored; source files are shown as they are.
type SyntaxRenderer struct {
	lexerName   string
	syntaxTheme string
}

// NewSyntaxRenderer creates a syntax highlighting renderer for the given filename
func NewSyntaxRenderer(filename string) *SyntaxRenderer {
	lexerName := "plaintext"
	if lexer := lexers.Match(filename); lexer != nil {
		lexerName = lexer.Config().Name
	}

	return &SyntaxRenderer{
		lexerName:   lexerName,
		syntaxTheme: "monokai",
	}
}

// LexerName returns the chroma lexer chosen for the file
func (r *SyntaxRenderer) LexerName() string {
	return r.lexerName
}

// Render applies syntax highlighting to a line
func (r *SyntaxRenderer) Render(line *source.Line, _ *columnizer.SplitLine) string {
	content := line.Text()
	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, r.lexerName, "terminal16m", r.syntaxTheme); err != nil {
		return content
	}

	// Remove any newlines that quick.Highlight adds
	highlighted := strings.ReplaceAll(buf.String(), "\n", "")
	return strings.ReplaceAll(highlighted, "\r", "")
}

var syntaxExts = map[string]bool{
	".go": true, ".rs": true, ".py": true, ".js": true, ".ts": true,
	".jsx": true, ".tsx": true, ".c": true, ".cpp": true, ".h": true,
	".hpp": true, ".java": true, ".rb": true, ".php": true, ".swift": true,
	".kt": true, ".scala": true, ".cs": true, ".lua": true,
	".sh": true, ".bash": true, ".zsh": true,
	".yaml": true, ".yml": true, ".json": true, ".toml": true, ".xml": true,
	".html": true, ".css": true, ".sql": true, ".md": true,
}

var specialFiles = map[string]bool{
	"makefile": true, "dockerfile": true, "cmakelists.txt": true,
}

// IsSyntaxHighlightable returns true if the file type supports syntax highlighting.
// Log-like files (.log, .txt, .csv, .jsonl) are never highlighted.
func IsSyntaxHighlightable(filename string) bool {
	if syntaxExts[strings.ToLower(filepath.Ext(filename))] {
		return true
	}
	return specialFiles[strings.ToLower(filepath.Base(filename))]
}
