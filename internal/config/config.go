package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Theme      ThemeConfig      `toml:"theme"`
	LogLevels  LogLevelConfig   `toml:"log_levels"`
	Columnizer ColumnizerConfig `toml:"columnizer"`
	Filter     FilterConfig     `toml:"filter"`
	Source     SourceConfig     `toml:"source"`
	Log        LogConfig        `toml:"log"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name            string         `toml:"name"`
	LineNumbers     string         `toml:"line_numbers"`
	ColumnSeparator string         `toml:"column_separator"`
	SearchMatch     string         `toml:"search_match"`
	Levels          LogLevelColors `toml:"levels"`
}

// LogLevelColors defines colors for each log level
type LogLevelColors struct {
	Trace string `toml:"trace"`
	Debug string `toml:"debug"`
	Info  string `toml:"info"`
	Warn  string `toml:"warn"`
	Error string `toml:"error"`
	Fatal string `toml:"fatal"`
}

// LogLevelConfig defines log level detection patterns
type LogLevelConfig struct {
	TracePatterns []string `toml:"trace_patterns"`
	DebugPatterns []string `toml:"debug_patterns"`
	InfoPatterns  []string `toml:"info_patterns"`
	WarnPatterns  []string `toml:"warn_patterns"`
	ErrorPatterns []string `toml:"error_patterns"`
	FatalPatterns []string `toml:"fatal_patterns"`
}

// ColumnizerConfig selects and tunes the columnizer
type ColumnizerConfig struct {
	Name            string   `toml:"name"`
	MaxDisplayWidth int      `toml:"max_display_width"`
	CSVDelimiter    string   `toml:"csv_delimiter"`
	CSVHeader       bool     `toml:"csv_header"`
	RegexPattern    string   `toml:"regex_pattern"`
	JSONFields      []string `toml:"json_fields"`
}

// FilterConfig holds defaults for new filters
type FilterConfig struct {
	CaseSensitive bool `toml:"case_sensitive"`
	FuzzyValue    int  `toml:"fuzzy_value"`
}

// SourceConfig controls how files are followed
type SourceConfig struct {
	PollIntervalMs int `toml:"poll_interval_ms"`
	WaitTimeoutMs  int `toml:"wait_timeout_ms"`
}

// PollInterval returns the follower poll interval
func (s SourceConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// WaitTimeout returns how long a lookup waits for a line still being written
func (s SourceConfig) WaitTimeout() time.Duration {
	return time.Duration(s.WaitTimeoutMs) * time.Millisecond
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			Name:            "subtle",
			LineNumbers:     "240", // Dark gray
			ColumnSeparator: "238",
			SearchMatch:     "226", // Yellow
			Levels: LogLevelColors{
				Trace: "240", // Dark gray
				Debug: "244", // Medium gray
				Info:  "250", // Light gray (default)
				Warn:  "214", // Orange
				Error: "167", // Soft red
				Fatal: "196", // Bright red
			},
		},
		LogLevels: LogLevelConfig{
			TracePatterns: []string{"[TRC]", "[TRACE]", "TRACE", "TRC"},
			DebugPatterns: []string{"[DBG]", "[DEBUG]", "DEBUG", "DBG"},
			InfoPatterns:  []string{"[INF]", "[INFO]", "INFO", "INF"},
			WarnPatterns:  []string{"[WRN]", "[WARN]", "[WARNING]", "WARN", "WRN", "WARNING"},
			ErrorPatterns: []string{"[ERR]", "[ERROR]", "ERROR", "ERR"},
			FatalPatterns: []string{"[FTL]", "[FATAL]", "FATAL", "FTL", "[CRIT]", "CRITICAL"},
		},
		Columnizer: ColumnizerConfig{
			Name:            "default",
			MaxDisplayWidth: 256,
			CSVDelimiter:    ",",
			CSVHeader:       true,
		},
		Filter: FilterConfig{
			CaseSensitive: false,
			FuzzyValue:    1,
		},
		Source: SourceConfig{
			PollIntervalMs: 250,
			WaitTimeoutMs:  2000,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads config from the default path, falling back to defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads config from path, falling back to defaults when it is
// empty or missing
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to the default path
func Save(cfg *Config) error {
	return SaveTo(cfg, getConfigPath())
}

// SaveTo writes config to path
func SaveTo(cfg *Config, configPath string) error {
	if configPath == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "logrange", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "logrange", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
