// Package config handles tool configuration loading and management.
package config

import (
	"fmt"

	"github.com/zusitools/go-ls3/pkg/ls3"
)

// Config holds all tool settings.
type Config struct {
	Export   ExportConfig   `yaml:"export"`
	Optimize OptimizeConfig `yaml:"optimize"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExportConfig holds export pipeline settings.
type ExportConfig struct {
	Scope      string   `yaml:"scope"`
	Variants   []string `yaml:"variants"`
	Animations bool     `yaml:"animations"`

	// AuthorName and AuthorID are written into the Info block of
	// every exported file.
	AuthorName string `yaml:"author_name"`
	AuthorID   int    `yaml:"author_id"`
}

// OptimizeConfig holds vertex welding settings.
type OptimizeConfig struct {
	Enabled         bool    `yaml:"enabled"`
	CoordTolerance  float32 `yaml:"coord_tolerance"`
	UVTolerance     float32 `yaml:"uv_tolerance"`
	NormalTolerance float32 `yaml:"normal_tolerance"`
}

// DataConfig holds installation paths.
type DataConfig struct {
	// DataDir is the Zusi data directory link paths resolve against.
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Scope:      "all",
			Animations: true,
		},
		Optimize: OptimizeConfig{
			Enabled:         true,
			CoordTolerance:  0.001,
			UVTolerance:     0.002,
			NormalTolerance: 0.017,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Scope converts the configured scope name to an export scope.
func (c *Config) Scope() (ls3.ExportScope, error) {
	switch c.Export.Scope {
	case "all", "":
		return ls3.ScopeAll, nil
	case "selected":
		return ls3.ScopeSelectedObjects, nil
	case "subsets-of-selected":
		return ls3.ScopeSubsetsOfSelected, nil
	case "selected-materials":
		return ls3.ScopeSelectedMaterials, nil
	default:
		return 0, fmt.Errorf("unknown export scope %q", c.Export.Scope)
	}
}

// Tolerances converts the optimizer settings to welding tolerances.
func (c *Config) Tolerances() ls3.Tolerances {
	return ls3.Tolerances{
		Coord:       c.Optimize.CoordTolerance,
		UV:          c.Optimize.UVTolerance,
		NormalAngle: c.Optimize.NormalTolerance,
	}
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	if _, err := c.Scope(); err != nil {
		return err
	}
	return c.Tolerances().Validate()
}
