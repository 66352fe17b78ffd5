package main

import (
	"fmt"
	"os"

	"github.com/jihwankim/ptmcmc/internal/config"
)

// loadConfig loads the configuration from cfgFile, auto-generating a
// default config file at that path the first time a run is attempted
// without one.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "ptmcmc.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", path)
		cfg := config.Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
