package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagDataDir    = flag.String("datadir", "", "Zusi data directory")
	flagScope      = flag.String("scope", "", "Export scope (all, selected, subsets-of-selected, selected-materials)")
	flagNoOptimize = flag.Bool("no-optimize", false, "Disable vertex welding")
	flagNoAnim     = flag.Bool("no-animations", false, "Export a static scene")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDataDir != "" {
		cfg.Data.DataDir = *flagDataDir
	}
	if *flagScope != "" {
		cfg.Export.Scope = *flagScope
	}
	if *flagNoOptimize {
		cfg.Optimize.Enabled = false
	}
	if *flagNoAnim {
		cfg.Export.Animations = false
	}
}
