// Package config handles simulation configuration loading and management.
package config

import (
	"time"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Config holds all destruction and host settings.
type Config struct {
	Destruction   DestructionConfig   `yaml:"destruction"`
	Fragmentation FragmentationConfig `yaml:"fragmentation"`
	Healing       HealingConfig       `yaml:"healing"`
	Simulation    SimulationConfig    `yaml:"simulation"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// DestructionConfig holds tree construction and body settings.
type DestructionConfig struct {
	TreeHeight       int     `yaml:"tree_height"`
	Seed             uint64  `yaml:"seed"`
	MaxSampleTries   int     `yaml:"max_sample_tries"`
	Density          float32 `yaml:"density"`
	MinMass          float32 `yaml:"min_mass"`
	TextureScale     float32 `yaml:"texture_scale"`
	PruneInterior    bool    `yaml:"prune_interior"`
	StrictInvariants bool    `yaml:"strict_invariants"` // fail instead of repairing a broken tree
}

// FragmentationConfig holds the two-stage explosion settings.
type FragmentationConfig struct {
	ShallowRadius   float32 `yaml:"shallow_radius"`
	ShallowDepth    int     `yaml:"shallow_depth"`
	DeepRadius      float32 `yaml:"deep_radius"`
	DeepDepth       int     `yaml:"deep_depth"`
	ApplyImpulse    bool    `yaml:"apply_impulse"`
	ImpulseStrength float32 `yaml:"impulse_strength"`
	Estimator       string  `yaml:"estimator"` // "overlap" or "center"
	Growth          float32 `yaml:"growth"`
}

// HealingConfig holds recombination settings.
type HealingConfig struct {
	LevelsUp int           `yaml:"levels_up"`
	Duration time.Duration `yaml:"duration"`
}

// SimulationConfig holds headless host settings.
type SimulationConfig struct {
	TickRate      int        `yaml:"tick_rate"`
	LinearDamping float32    `yaml:"linear_damping"`
	BoxSize       pmath.Vec3 `yaml:"box_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Destruction: DestructionConfig{
			TreeHeight:     3,
			Seed:           1,
			MaxSampleTries: 5000,
			Density:        1.0,
			MinMass:        0.01,
			TextureScale:   0.25,
			PruneInterior:  true,
		},
		Fragmentation: FragmentationConfig{
			ShallowRadius:   2.0,
			ShallowDepth:    2,
			DeepRadius:      1.0,
			DeepDepth:       2,
			ApplyImpulse:    true,
			ImpulseStrength: 1.0,
			Estimator:       "overlap",
			Growth:          0.05,
		},
		Healing: HealingConfig{
			LevelsUp: 2,
			Duration: 1500 * time.Millisecond,
		},
		Simulation: SimulationConfig{
			TickRate:      60,
			LinearDamping: 0.1,
			BoxSize:       pmath.Vec3{X: 2, Y: 2, Z: 2},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

// TickInterval returns the duration of one simulation tick.
func (c SimulationConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}
