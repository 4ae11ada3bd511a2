package logformat

import (
	"testing"

	"github.com/TimelordUK/logrange/internal/config"
	"github.com/TimelordUK/logrange/internal/source"
)

func TestLevelDetector(t *testing.T) {
	d := NewLevelDetector(&config.DefaultConfig().LogLevels)

	tests := []struct {
		line string
		want source.LogLevel
	}{
		{"2024-01-15 10:00:00 [INF] started", source.LevelInfo},
		{"2024-01-15 10:00:00 DEBUG cache miss", source.LevelDebug},
		{"[WARNING] disk almost full", source.LevelWarn},
		{"[ERROR] write failed", source.LevelError},
		{"FATAL out of memory", source.LevelFatal},
		{"TRACE enter handler", source.LevelTrace},
		{"plain text", source.LevelUnknown},
		// most severe wins
		{"INFO retry after FATAL", source.LevelFatal},
	}

	for _, tt := range tests {
		if got := d.Detect([]byte(tt.line)); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestDetectLineCachesLevel(t *testing.T) {
	d := NewLevelDetector(&config.DefaultConfig().LogLevels)
	line := &source.Line{Content: []byte("[ERR] boom")}

	if got := d.DetectLine(line); got != source.LevelError {
		t.Fatalf("DetectLine = %v", got)
	}
	if line.Level != source.LevelError {
		t.Errorf("line.Level = %v, want ERROR", line.Level)
	}

	preset := &source.Line{Content: []byte("[ERR] boom"), Level: source.LevelInfo}
	if got := d.DetectLine(preset); got != source.LevelInfo {
		t.Errorf("preset level overwritten: %v", got)
	}
}
