// Package config resolves report settings from flags, USAGE_STATS_*
// environment variables, an optional YAML file and built-in defaults.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/penwyp/usage-stats/internal/core/estimate"
)

const envPrefix = "USAGE_STATS"

// Keys understood by Load.
const (
	KeyTargetApp      = "target_app"
	KeyMinAppRequests = "min_app_requests"
	KeyTopModels      = "top_models"
	KeyOutput         = "output"

	KeyAvgBuffer     = "estimate.avg_buffer"
	KeyMedianBuffer  = "estimate.median_buffer"
	KeyCurrentInput  = "estimate.current_input"
	KeyCurrentOutput = "estimate.current_output"

	KeyAnonymousPerDay = "projection.anonymous_requests_per_day"
	KeyNamedPerDay     = "projection.named_requests_per_day"
	KeyDaysPerMonth    = "projection.days_per_month"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds everything the report needs besides the input data.
type Config struct {
	TargetApp      string           `mapstructure:"target_app"`
	MinAppRequests int              `mapstructure:"min_app_requests"`
	TopModels      int              `mapstructure:"top_models"`
	Output         string           `mapstructure:"output"`
	Estimate       EstimateConfig   `mapstructure:"estimate"`
	Projection     ProjectionConfig `mapstructure:"projection"`
}

// EstimateConfig controls the recommended token estimates.
type EstimateConfig struct {
	AvgBuffer     float64 `mapstructure:"avg_buffer"`
	MedianBuffer  float64 `mapstructure:"median_buffer"`
	CurrentInput  int     `mapstructure:"current_input"`
	CurrentOutput int     `mapstructure:"current_output"`
}

// ProjectionConfig controls the daily and monthly cost projection.
type ProjectionConfig struct {
	AnonymousRequestsPerDay float64 `mapstructure:"anonymous_requests_per_day"`
	NamedRequestsPerDay     float64 `mapstructure:"named_requests_per_day"`
	DaysPerMonth            float64 `mapstructure:"days_per_month"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TargetApp:      "Aproject",
		MinAppRequests: 5,
		TopModels:      10,
		Output:         OutputText,
		Estimate: EstimateConfig{
			AvgBuffer:     estimate.DefaultBuffers.Average,
			MedianBuffer:  estimate.DefaultBuffers.Median,
			CurrentInput:  5000,
			CurrentOutput: 3000,
		},
		Projection: ProjectionConfig{
			AnonymousRequestsPerDay: estimate.DefaultUsage.AnonymousPerDay,
			NamedRequestsPerDay:     estimate.DefaultUsage.NamedPerDay,
			DaysPerMonth:            estimate.DefaultUsage.DaysPerMonth,
		},
	}
}

// NewViper returns a viper instance seeded with defaults and bound to the
// USAGE_STATS_* environment.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault(KeyTargetApp, d.TargetApp)
	v.SetDefault(KeyMinAppRequests, d.MinAppRequests)
	v.SetDefault(KeyTopModels, d.TopModels)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyAvgBuffer, d.Estimate.AvgBuffer)
	v.SetDefault(KeyMedianBuffer, d.Estimate.MedianBuffer)
	v.SetDefault(KeyCurrentInput, d.Estimate.CurrentInput)
	v.SetDefault(KeyCurrentOutput, d.Estimate.CurrentOutput)
	v.SetDefault(KeyAnonymousPerDay, d.Projection.AnonymousRequestsPerDay)
	v.SetDefault(KeyNamedPerDay, d.Projection.NamedRequestsPerDay)
	v.SetDefault(KeyDaysPerMonth, d.Projection.DaysPerMonth)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile when set and resolves the final Config from v.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the report cannot work with.
func (c Config) Validate() error {
	switch {
	case c.MinAppRequests < 1:
		return errors.Errorf("%s must be at least 1, got %d", KeyMinAppRequests, c.MinAppRequests)
	case c.TopModels < 1:
		return errors.Errorf("%s must be at least 1, got %d", KeyTopModels, c.TopModels)
	case c.Output != OutputText && c.Output != OutputJSON:
		return errors.Errorf("unsupported output format %q (want %s or %s)", c.Output, OutputText, OutputJSON)
	case c.Estimate.AvgBuffer <= 0 || c.Estimate.MedianBuffer <= 0:
		return errors.New("estimate buffers must be positive")
	case c.Projection.AnonymousRequestsPerDay < 0 || c.Projection.NamedRequestsPerDay < 0 || c.Projection.DaysPerMonth < 0:
		return errors.New("projection figures must not be negative")
	}
	return nil
}

// Buffers returns the estimate multipliers.
func (c Config) Buffers() estimate.Buffers {
	return estimate.Buffers{Average: c.Estimate.AvgBuffer, Median: c.Estimate.MedianBuffer}
}

// Usage returns the cost projection assumptions.
func (c Config) Usage() estimate.Usage {
	return estimate.Usage{
		AnonymousPerDay: c.Projection.AnonymousRequestsPerDay,
		NamedPerDay:     c.Projection.NamedRequestsPerDay,
		DaysPerMonth:    c.Projection.DaysPerMonth,
	}
}
