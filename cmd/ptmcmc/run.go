package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jihwankim/ptmcmc/internal/config"
	"github.com/jihwankim/ptmcmc/internal/kde"
	"github.com/jihwankim/ptmcmc/internal/proposal"
	"github.com/jihwankim/ptmcmc/internal/rjmcmc"
	"github.com/jihwankim/ptmcmc/internal/sampler"
	"github.com/jihwankim/ptmcmc/internal/targets"
	"github.com/jihwankim/ptmcmc/internal/tempering"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the PT-MCMC sampler",
	Long:  `Loads configuration, builds the rank ladder, and samples until niter iterations, early ESS termination, or SIGINT/SIGTERM.`,
	RunE:  runSampler,
}

func init() {
	runCmd.Flags().Int("ranks", 0, "override run.ranks from config (0 = use config value)")
	runCmd.Flags().String("target", "gaussian1d", "built-in demo target: gaussian1d, gaussian5d, rosenbrock2d, priorstress")
	runCmd.Flags().String("models-file", "", "RJMCMC model registry YAML (overrides rjmcmc.models_file; enables RJMCMC mode)")
	runCmd.Flags().String("initial-model", "", "starting model name for RJMCMC mode (default: first model in the registry)")
	runCmd.Flags().Float64("jump-prob", 0.1, "per-iteration trans-dimensional jump probability in RJMCMC mode")
}

func runSampler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if ranks, _ := cmd.Flags().GetInt("ranks"); ranks > 0 {
		cfg.Run.Ranks = ranks
	}
	if mf, _ := cmd.Flags().GetString("models-file"); mf != "" {
		cfg.RJMCMC.ModelsFile = mf
	}

	ctx := context.Background()

	if cfg.RJMCMC.ModelsFile != "" {
		return runRJMCMC(ctx, cmd, cfg)
	}
	return runPlain(ctx, cmd, cfg)
}

func runPlain(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
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

	result := s.Run(ctx)
	if result.Err != nil {
		return fmt.Errorf("sampler run failed: %w", result.Err)
	}
	fmt.Printf("Run Complete (%s)\n", result.Duration.Round(time.Second))
	return nil
}

func runRJMCMC(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	parser := rjmcmc.NewParser(nil)
	models, err := parser.ParseFile(cfg.RJMCMC.ModelsFile)
	if err != nil {
		return fmt.Errorf("failed to parse models file: %w", err)
	}

	jumpProb, _ := cmd.Flags().GetFloat64("jump-prob")
	initial, _ := cmd.Flags().GetString("initial-model")
	if initial == "" && len(models) > 0 {
		initial = models[0].Name
	}

	modelTargets := make([]sampler.ModelTarget, 0, len(models))
	for _, m := range models {
		target, init, err := targets.Lookup(m.Name)
		if err != nil {
			return fmt.Errorf("RJMCMC demo mode requires model names matching a built-in target: %w", err)
		}

		seed := m.Seed
		if seed == 0 {
			seed = cfg.Sampler.Seed
		}
		fit, err := warmupKDEFit(target, init, seed, m.Ndim)
		if err != nil {
			return fmt.Errorf("failed to warm up KDE fit for model %q: %w", m.Name, err)
		}

		modelTargets = append(modelTargets, sampler.ModelTarget{
			Name:   m.Name,
			Target: target,
			Init:   init,
			KDEFit: fit,
			Seed:   seed,
		})
	}

	rs, err := sampler.NewRJMCMC(cfg, modelTargets, initial, jumpProb)
	if err != nil {
		return fmt.Errorf("failed to build RJMCMC sampler: %w", err)
	}

	result := rs.Run(ctx)
	if result.Err != nil {
		return fmt.Errorf("RJMCMC run failed: %w", result.Err)
	}
	fmt.Printf("Run Complete (%s)\n", result.Duration.Round(time.Second))
	return nil
}

// warmupKDEFit runs a short standalone chain (the K=1 ColdRank, KDE
// kernel weight zero so it cannot jump using a KDE that doesn't exist
// yet) and fits a Gaussian KDE over the resulting samples, standing in
// for "a prior fixed-dimension PT-MCMC run" that a real deployment would
// supply to internal/rjmcmc.Registry.Register directly.
func warmupKDEFit(target proposal.Target, init []float64, seed int64, ndim int) (*kde.Gaussian, error) {
	const warmupIters = 2000

	rank, err := tempering.NewColdRank(ndim, target, seed, tempering.Weights{SCAM: 20, AM: 20, DE: 20, KDE: 0}, 500, 1)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed + 1))

	x := make([]float64, len(init))
	copy(x, init)
	state := proposal.State{X: x, LogL: target.LogLikelihood(x), LogPrior: target.LogPrior(x)}

	pts := make([][]float64, 0, warmupIters)
	for i := 0; i < warmupIters; i++ {
		state, _ = rank.Once(state)
		pts = append(pts, append([]float64(nil), state.X...))
	}

	fit, ok := kde.Fit(pts, rng)
	if !ok {
		return nil, nil
	}
	return fit, nil
}
