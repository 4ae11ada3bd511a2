package columnizer

import (
	"fmt"
	"sort"

	"github.com/TimelordUK/logrange/internal/config"
)

// Factory builds a new columnizer instance from configuration
type Factory func(cfg *config.Config) (Columnizer, error)

var factories = map[string]Factory{
	"default": func(cfg *config.Config) (Columnizer, error) {
		return NewDefaultColumnizer(cfg.Columnizer.MaxDisplayWidth), nil
	},
	"timestamp": func(cfg *config.Config) (Columnizer, error) {
		return NewTimestampColumnizer(cfg.Columnizer.MaxDisplayWidth), nil
	},
	"csv": func(cfg *config.Config) (Columnizer, error) {
		return NewCSVColumnizer(cfg.Columnizer.CSVDelimiter, cfg.Columnizer.CSVHeader, cfg.Columnizer.MaxDisplayWidth)
	},
	"regex": func(cfg *config.Config) (Columnizer, error) {
		return NewRegexColumnizer(cfg.Columnizer.RegexPattern, cfg.Columnizer.MaxDisplayWidth)
	},
	"json": func(cfg *config.Config) (Columnizer, error) {
		return NewJSONColumnizer(cfg.Columnizer.JSONFields, cfg.Columnizer.MaxDisplayWidth), nil
	},
	"level": func(cfg *config.Config) (Columnizer, error) {
		return NewLevelColumnizer(&cfg.LogLevels, cfg.Columnizer.MaxDisplayWidth), nil
	},
}

// Names returns the registered columnizer names, sorted
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a fresh columnizer instance by name. Every call returns a new
// instance, so caches keyed on identity see it as a different columnizer.
func New(name string, cfg *config.Config) (Columnizer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if name == "" {
		name = "default"
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return f(cfg)
}

// FromConfig creates the columnizer named in cfg
func FromConfig(cfg *config.Config) (Columnizer, error) {
	return New(cfg.Columnizer.Name, cfg)
}
