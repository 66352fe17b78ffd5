package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/ptmcmc/internal/config"
	"github.com/jihwankim/ptmcmc/internal/sampler"
	"github.com/jihwankim/ptmcmc/internal/targets"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Args:  cobra.NoArgs,
	Short: "Resume the PT-MCMC sampler from existing chain files",
	Long:  `Loads configuration with sampler.resume forced true and continues every rank from its existing chain_<T>.txt file.`,
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().Int("ranks", 0, "override run.ranks from config (0 = use config value)")
	resumeCmd.Flags().String("target", "gaussian1d", "built-in demo target (must match the target the original run used)")
}

func runResume(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Sampler.Resume = true

	if ranks, _ := cmd.Flags().GetInt("ranks"); ranks > 0 {
		cfg.Run.Ranks = ranks
	}

	if cfg.RJMCMC.ModelsFile != "" {
		return fmt.Errorf("resume is not supported in RJMCMC mode yet")
	}

	return resumePlain(cmd, cfg)
}

func resumePlain(cmd *cobra.Command, cfg *config.Config) error {
	targetName, _ := cmd.Flags().GetString("target")
	target, init, err := targets.Lookup(targetName)
	if err != nil {
		return err
	}
	cfg.Sampler.Ndim = len(init)

	s, err := sampler.New(cfg, target, init)
	if err != nil {
		return fmt.Errorf("failed to build sampler: %w", err)
	}

	result := s.Run(context.Background())
	if result.Err != nil {
		return fmt.Errorf("resumed run failed: %w", result.Err)
	}
	fmt.Printf("Run Complete (%s)\n", result.Duration.Round(time.Second))
	return nil
}
