package logformat

import (
	"bytes"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
)

type levelPatterns struct {
	level    source.LogLevel
	patterns [][]byte
}

// LevelDetector detects log levels from line content
type LevelDetector struct {
	// ordered by severity, most severe first
	patterns []levelPatterns
}

// NewLevelDetector creates a detector from config
func NewLevelDetector(cfg *config.LogLevelConfig) *LevelDetector {
	ordered := []struct {
		level    source.LogLevel
		patterns []string
	}{
		{source.LevelFatal, cfg.FatalPatterns},
		{source.LevelError, cfg.ErrorPatterns},
		{source.LevelWarn, cfg.WarnPatterns},
		{source.LevelInfo, cfg.InfoPatterns},
		{source.LevelDebug, cfg.DebugPatterns},
		{source.LevelTrace, cfg.TracePatterns},
	}

	d := &LevelDetector{}
	for _, o := range ordered {
		lp := levelPatterns{level: o.level}
		for _, p := range o.patterns {
			if p != "" {
				lp.patterns = append(lp.patterns, []byte(p))
			}
		}
		d.patterns = append(d.patterns, lp)
	}
	return d
}

// Detect returns the log level for a line. Fatal is checked first as it's
// the most important to identify.
func (d *LevelDetector) Detect(content []byte) source.LogLevel {
	for _, lp := range d.patterns {
		for _, pattern := range lp.patterns {
			if bytes.Contains(content, pattern) {
				return lp.level
			}
		}
	}
	return source.LevelUnknown
}

// DetectLine fills in line.Level when it is still unknown and returns it
func (d *LevelDetector) DetectLine(line *source.Line) source.LogLevel {
	if line.Level == source.LevelUnknown {
		line.Level = d.Detect(line.Content)
	}
	return line.Level
}
