package config

import (
	"flag"
	"path/filepath"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagHeight      = flag.Int("height", 0, "Subdivision tree height")
	flagSeed        = flag.Uint64("seed", 0, "Site sampler seed")
	flagMetricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flagSaveConfig  = flag.Bool("save-config", false, "Write the effective config and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// WriteEffective stores cfg at the --config path, or in ConfigDir when none
// was given, and returns where it went.
func WriteEffective(cfg *Config) (string, error) {
	if path := ConfigPath(); path != "" {
		return path, cfg.SaveTo(path)
	}
	return filepath.Join(ConfigDir(), "shatter.yaml"), cfg.Save()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagHeight > 0 {
		cfg.Destruction.TreeHeight = *flagHeight
	}
	if *flagSeed != 0 {
		cfg.Destruction.Seed = *flagSeed
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = *flagMetricsAddr
	}
}
