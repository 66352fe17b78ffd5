package config_test

import (
	"path/filepath"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config should validate, got: %v", err)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"ndim zero", func(c *config.Config) { c.Sampler.Ndim = 0 }, true},
		{"empty out_dir", func(c *config.Config) { c.Sampler.OutDir = "" }, true},
		{"niter zero", func(c *config.Config) { c.Run.Niter = 0 }, true},
		{"thin zero", func(c *config.Config) { c.Run.Thin = 0 }, true},
		{"ranks zero", func(c *config.Config) { c.Run.Ranks = 0 }, true},
		{"multi-rank tmax<=tmin", func(c *config.Config) {
			c.Run.Ranks = 4
			c.Run.Tmin = 5
			c.Run.Tmax = 5
		}, true},
		{"multi-rank valid ladder", func(c *config.Config) {
			c.Run.Ranks = 4
			c.Run.Tmin = 1
			c.Run.Tmax = 10
		}, false},
		{"scam_weight zero", func(c *config.Config) { c.Run.SCAMWeight = 0 }, true},
		{"am_weight zero", func(c *config.Config) { c.Run.AMWeight = 0 }, true},
		{"de_weight and kde_weight zero is fine (both optional)", func(c *config.Config) {
			c.Run.DEWeight = 0
			c.Run.KDEWeight = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected Validate() to return an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected Validate() to succeed, got: %v", err)
			}
		})
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Sampler.Ndim = 5
	cfg.Run.Niter = 12345

	path := filepath.Join(t.TempDir(), "ptmcmc.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Sampler.Ndim != 5 {
		t.Errorf("loaded Sampler.Ndim = %d, want 5", loaded.Sampler.Ndim)
	}
	if loaded.Run.Niter != 12345 {
		t.Errorf("loaded Run.Niter = %d, want 12345", loaded.Run.Niter)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load on a missing file should not error, got: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults returned for a missing file should validate, got: %v", err)
	}
}
