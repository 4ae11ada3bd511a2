package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Columnizer.Name != "default" {
		t.Fatalf("Columnizer.Name = %q, want %q", cfg.Columnizer.Name, "default")
	}
	if cfg.Source.WaitTimeout() != 2*time.Second {
		t.Fatalf("WaitTimeout = %v, want 2s", cfg.Source.WaitTimeout())
	}
}

func TestLoadFrom_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[columnizer]
name = "csv"
csv_delimiter = ";"

[filter]
fuzzy_value = 3

[source]
poll_interval_ms = 50
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Columnizer.Name != "csv" || cfg.Columnizer.CSVDelimiter != ";" {
		t.Fatalf("Columnizer = %+v, want csv with ';'", cfg.Columnizer)
	}
	if cfg.Filter.FuzzyValue != 3 {
		t.Fatalf("FuzzyValue = %d, want 3", cfg.Filter.FuzzyValue)
	}
	if cfg.Source.PollInterval() != 50*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 50ms", cfg.Source.PollInterval())
	}
	// untouched sections keep defaults
	if cfg.Source.WaitTimeoutMs != 2000 {
		t.Fatalf("WaitTimeoutMs = %d, want 2000", cfg.Source.WaitTimeoutMs)
	}
	if len(cfg.LogLevels.ErrorPatterns) == 0 {
		t.Fatal("ErrorPatterns should keep defaults")
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[columnizer\nname = "), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Columnizer.Name = "timestamp"
	cfg.Log.Level = "debug"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Columnizer.Name != "timestamp" || got.Log.Level != "debug" {
		t.Fatalf("round trip lost values: %+v %+v", got.Columnizer, got.Log)
	}
}

func TestGetConfigPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := filepath.Join(dir, "logrange", "config.toml")
	if got := GetConfigPath(); got != want {
		t.Fatalf("GetConfigPath() = %q, want %q", got, want)
	}
}
