// Package config handles modelinfo tool configuration loading and management.
package config

import "strings"

// Config holds all tool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoaderConfig controls how model files are loaded.
type LoaderConfig struct {
	Formats  []string `yaml:"formats"` // Allowed format names; empty means all
	Validate bool     `yaml:"validate"`
	// Force names a format to load regardless of file extension. Set
	// from the -format flag only, never persisted.
	Force string `yaml:"-"`
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format    string `yaml:"format"` // "text" or "yaml"
	Precision int    `yaml:"precision"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// FormatEnabled reports whether a format name is allowed by the loader
// allowlist. An empty allowlist enables every registered format.
func (l LoaderConfig) FormatEnabled(name string) bool {
	if len(l.Formats) == 0 {
		return true
	}
	for _, f := range l.Formats {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Formats:  nil,
			Validate: true,
		},
		Output: OutputConfig{
			Format:    "text",
			Precision: 3,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
