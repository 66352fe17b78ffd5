// Package config loads the sampler's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete sampler configuration.
type Config struct {
	Sampler SamplerConfig `yaml:"sampler"`
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	RJMCMC  RJMCMCConfig  `yaml:"rjmcmc"`
}

// SamplerConfig carries per-process sampler settings.
type SamplerConfig struct {
	Ndim    int    `yaml:"ndim"`
	OutDir  string `yaml:"out_dir"`
	Verbose bool   `yaml:"verbose"`
	Resume  bool   `yaml:"resume"`
	Seed    int64  `yaml:"seed"`
}

// RunConfig carries PT-MCMC run parameters (spec.md §4.4/§4.6).
type RunConfig struct {
	Niter      int64   `yaml:"niter"`
	Thin       int     `yaml:"thin"`
	ISave      int     `yaml:"isave"`
	Burn       int64   `yaml:"burn"`
	Tmin       float64 `yaml:"tmin"`
	Tmax       float64 `yaml:"tmax"`
	Ranks      int     `yaml:"ranks"`
	Tskip      int     `yaml:"tskip"`
	CovUpdate  int     `yaml:"cov_update"`
	KDEUpdate  int     `yaml:"kde_update"`
	SCAMWeight int     `yaml:"scam_weight"`
	AMWeight   int     `yaml:"am_weight"`
	DEWeight   int     `yaml:"de_weight"`
	KDEWeight  int     `yaml:"kde_weight"`
	Neff       float64 `yaml:"neff"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus instrumentation endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// RJMCMCConfig points at the model-registry YAML used by the
// trans-dimensional wrapper (internal/rjmcmc). Empty ModelsFile means the
// sampler runs in plain (fixed-dimension) PT-MCMC mode.
type RJMCMCConfig struct {
	ModelsFile string `yaml:"models_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sampler: SamplerConfig{
			Ndim:    1,
			OutDir:  "./chains",
			Verbose: true,
			Resume:  false,
			Seed:    0,
		},
		Run: RunConfig{
			Niter:      100000,
			Thin:       10,
			ISave:      1000,
			Burn:       10000,
			Tmin:       1.0,
			Tmax:       10.0,
			Ranks:      4,
			Tskip:      100,
			CovUpdate:  1000,
			KDEUpdate:  10000,
			SCAMWeight: 20,
			AMWeight:   20,
			DEWeight:   20,
			KDEWeight:  30,
			Neff:       0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9090",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults for
// any field the file omits. A missing path yields the defaults verbatim,
// the same "no file means default config" behavior the framework config
// loader uses.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the sampler cannot run with.
func (c *Config) Validate() error {
	if c.Sampler.Ndim < 1 {
		return fmt.Errorf("sampler.ndim must be at least 1")
	}
	if c.Sampler.OutDir == "" {
		return fmt.Errorf("sampler.out_dir is required")
	}
	if c.Run.Niter < 1 {
		return fmt.Errorf("run.niter must be at least 1")
	}
	if c.Run.Thin < 1 {
		return fmt.Errorf("run.thin must be at least 1")
	}
	if c.Run.Ranks < 1 {
		return fmt.Errorf("run.ranks must be at least 1")
	}
	if c.Run.Ranks > 1 && c.Run.Tmax <= c.Run.Tmin {
		return fmt.Errorf("run.tmax must exceed run.tmin when run.ranks > 1")
	}
	if c.Run.SCAMWeight <= 0 {
		return fmt.Errorf("run.scam_weight must be positive")
	}
	if c.Run.AMWeight <= 0 {
		return fmt.Errorf("run.am_weight must be positive")
	}
	return nil
}
