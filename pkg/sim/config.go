package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimConfig contains all configurable parameters that influence simulation outcomes
// This centralizes all magic numbers and constants for easy adjustment
type SimConfig struct {
	// === RATING PARAMETERS ===

	// StartRating is the rating assigned to every team the first time it is seen
	StartRating float64 `yaml:"start_rating"` // default: 1500

	// KFactor controls how far a rating moves toward the observed result.
	// Default 60. Historical tuning experiments also used 75 and 32; the
	// discrepancy has never been resolved, so the value is exposed here rather
	// than hard-coded at the call sites.
	KFactor float64 `yaml:"k_factor"` // default: 60

	// === EXPECTED GOALS MODEL ===

	FormWindow      int     `yaml:"form_window"`       // rolling matches for form stats (default: 7)
	FormFloor       float64 `yaml:"form_floor"`        // lower clip for avg goals (default: 0.7)
	FormCeil        float64 `yaml:"form_ceil"`         // upper clip for avg goals (default: 3.0)
	DefaultAvgGoals float64 `yaml:"default_avg_goals"` // used when a team has no completed matches (default: 1.5)

	EloEffectScale float64 `yaml:"elo_effect_scale"` // goals per 100 rating points (default: 0.12)
	HomeAdvantage  float64 `yaml:"home_advantage"`   // fixed goal bonus for the home side (default: 0.2)
	FormNoiseStd   float64 `yaml:"form_noise_std"`   // stddev of per-match Gaussian noise (default: 0.1)

	HeadToHeadBonus float64 `yaml:"head_to_head_bonus"` // bonus if the team already beat this opponent (default: 0.25)
	MomentumBonus   float64 `yaml:"momentum_bonus"`     // bonus for a clear league leader (default: 0.15)
	MomentumMargin  float64 `yaml:"momentum_margin"`    // points lead required for momentum (default: 4)

	// Expected goals are clamped to [MuFloor, MuCap] before the additive bonuses,
	// then to the looser MuLooseFloor afterwards
	MuFloor      float64 `yaml:"mu_floor"`       // default: 0.8
	MuCap        float64 `yaml:"mu_cap"`         // default: 4.0
	MuLooseFloor float64 `yaml:"mu_loose_floor"` // default: 0.5

	// === MONTE CARLO SETTINGS ===

	InnerTrials int `yaml:"inner_trials"` // per-fixture trials in expected-points mode (default: 1000)
	DefaultRuns int `yaml:"default_runs"` // full season trajectories when unspecified (default: 100)

	// PoissonNormalThreshold is the lambda above which the sampler switches from
	// Knuth's algorithm to the normal approximation
	PoissonNormalThreshold float64 `yaml:"poisson_normal_threshold"` // default: 30

	// === STORAGE ===

	DatabasePath string `yaml:"database_path"` // sqlite archive for fixtures and forecasts
	CachePath    string `yaml:"cache_path"`    // on-disk cache for fetched schedules
}

// DefaultSimConfig returns the default configuration with all standard values
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		StartRating: 1500,
		KFactor:     60,

		FormWindow:      7,
		FormFloor:       0.7,
		FormCeil:        3.0,
		DefaultAvgGoals: 1.5,

		EloEffectScale: 0.12,
		HomeAdvantage:  0.2,
		FormNoiseStd:   0.1,

		HeadToHeadBonus: 0.25,
		MomentumBonus:   0.15,
		MomentumMargin:  4,

		MuFloor:      0.8,
		MuCap:        4.0,
		MuLooseFloor: 0.5,

		InnerTrials: 1000,
		DefaultRuns: 100,

		PoissonNormalThreshold: 30,

		DatabasePath: os.TempDir() + "/seasonsim.db",
		CachePath:    os.TempDir() + "/seasonsim-cache/",
	}
}

// Global configuration instance
var Config *SimConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultSimConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *SimConfig) {
	Config = newConfig
}

// LoadConfig reads a YAML file over the defaults and installs the result
// as the global configuration
func LoadConfig(configPath string) (*SimConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	Config = config
	return config, nil
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *SimConfig) error {
	if config.StartRating <= 0 {
		return fmt.Errorf("StartRating must be positive, got: %f", config.StartRating)
	}

	if config.KFactor <= 0 || config.KFactor > 200 {
		return fmt.Errorf("KFactor should be between 0 and 200, got: %f", config.KFactor)
	}

	if config.FormWindow < 1 {
		return fmt.Errorf("FormWindow must be at least 1, got: %d", config.FormWindow)
	}

	if config.FormFloor > config.FormCeil {
		return fmt.Errorf("FormFloor %f exceeds FormCeil %f", config.FormFloor, config.FormCeil)
	}

	if config.MuFloor > config.MuCap {
		return fmt.Errorf("MuFloor %f exceeds MuCap %f", config.MuFloor, config.MuCap)
	}

	if config.MuLooseFloor > config.MuFloor {
		return fmt.Errorf("MuLooseFloor %f exceeds MuFloor %f", config.MuLooseFloor, config.MuFloor)
	}

	if config.InnerTrials < 100 {
		return fmt.Errorf("InnerTrials should be at least 100 for stable probabilities, got: %d", config.InnerTrials)
	}

	if config.DefaultRuns < 1 {
		return fmt.Errorf("DefaultRuns must be at least 1, got: %d", config.DefaultRuns)
	}

	if config.FormNoiseStd < 0 {
		return fmt.Errorf("FormNoiseStd must not be negative, got: %f", config.FormNoiseStd)
	}

	return nil
}

// configOrDefault resolves a possibly-nil per-component config to the global one
func configOrDefault(cfg *SimConfig) *SimConfig {
	if cfg != nil {
		return cfg
	}
	return Config
}
