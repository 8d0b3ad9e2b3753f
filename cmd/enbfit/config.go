package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/compress"
	"github.com/enms-tools/enbfit/regression"
)

// Config is the CLI configuration. It is read from enbfit.yaml (in . or
// ./configs, or the file given with -config), ENBFIT_* environment variables
// and flags, flags taking precedence.
type Config struct {
	DataDir     string         `mapstructure:"data_dir"`
	Lenient     bool           `mapstructure:"lenient"`
	Concurrency int            `mapstructure:"concurrency"`
	Verbose     bool           `mapstructure:"verbose"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
	Cache       CacheConfig    `mapstructure:"cache"`
}

// AnalysisConfig selects drivers and fit settings.
type AnalysisConfig struct {
	Chart          string  `mapstructure:"chart"`
	Linear         string  `mapstructure:"linear"`
	Precision      int     `mapstructure:"precision"`
	ConditionLimit float64 `mapstructure:"condition_limit"`
	MBESign        string  `mapstructure:"mbe_sign"`
	Samples        int     `mapstructure:"samples"`
	FitLine        string  `mapstructure:"fit_line"`
}

// CacheConfig selects the report cache.
type CacheConfig struct {
	// Backend is "none", "local" or "redis".
	Backend     string        `mapstructure:"backend"`
	RedisURL    string        `mapstructure:"redis_url"`
	TTL         time.Duration `mapstructure:"ttl"`
	Compression string        `mapstructure:"compression"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("lenient", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("analysis.chart", "")
	v.SetDefault("analysis.linear", "")
	v.SetDefault("analysis.precision", regression.DefaultPrecision)
	v.SetDefault("analysis.condition_limit", regression.DefaultConditionLimit)
	v.SetDefault("analysis.mbe_sign", regression.SignResidual.String())
	v.SetDefault("analysis.samples", 0)
	v.SetDefault("analysis.fit_line", "quadratic")
	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.compression", compress.S2.String())
}

// loadConfig reads the configuration. path may be empty, in which case a
// missing enbfit.yaml is not an error. overrides are applied last.
func loadConfig(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("enbfit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("ENBFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// selection parses the driver selection. Empty values are left for
// regression.Selection.Resolve to fill.
func (c AnalysisConfig) selection() (regression.Selection, error) {
	var sel regression.Selection

	if strings.TrimSpace(c.Chart) != "" {
		s, err := baseline.ParseSlot(c.Chart)
		if err != nil {
			return sel, err
		}
		sel.Chart = s
	}

	for _, part := range strings.Split(c.Linear, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := baseline.ParseSlot(part)
		if err != nil {
			return sel, err
		}
		sel.Linear = append(sel.Linear, s)
	}

	return sel, nil
}

func (c AnalysisConfig) fitOptions() ([]regression.FitOption, error) {
	var sign regression.Sign
	switch strings.ToLower(strings.TrimSpace(c.MBESign)) {
	case "", regression.SignResidual.String():
		sign = regression.SignResidual
	case regression.SignInverted.String():
		sign = regression.SignInverted
	default:
		return nil, fmt.Errorf("unknown mbe_sign %q", c.MBESign)
	}

	opts := []regression.FitOption{
		regression.WithEquationPrecision(c.Precision),
		regression.WithConditionLimit(c.ConditionLimit),
		regression.WithMBEPercentageSign(sign),
	}
	if _, err := regression.NewFitConfig(opts...); err != nil {
		return nil, err
	}

	return opts, nil
}
