package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile    = flag.String("log-file", "", "Write logs to a file")
	flagYAML       = flag.Bool("yaml", false, "Render reports as YAML")
	flagFormats    = flag.String("formats", "", "Comma-separated format allowlist (obj,gltf,stl,ply)")
	flagFormat     = flag.String("format", "", "Force the input format, bypassing extension detection")
	flagNoValidate = flag.Bool("no-validate", false, "Skip structural validation after loading")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagYAML {
		cfg.Output.Format = "yaml"
	}
	if *flagFormats != "" {
		cfg.Loader.Formats = splitList(*flagFormats)
	}
	if *flagFormat != "" {
		cfg.Loader.Force = *flagFormat
	}
	if *flagNoValidate {
		cfg.Loader.Validate = false
	}
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
