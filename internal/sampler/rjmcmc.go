package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/ptmcmc/internal/chainstore"
	"github.com/jihwankim/ptmcmc/internal/config"
	"github.com/jihwankim/ptmcmc/internal/kde"
	"github.com/jihwankim/ptmcmc/internal/logging"
	"github.com/jihwankim/ptmcmc/internal/metrics"
	"github.com/jihwankim/ptmcmc/internal/proposal"
	"github.com/jihwankim/ptmcmc/internal/rjmcmc"
	"github.com/jihwankim/ptmcmc/internal/tempering"
)

// ModelTarget is the caller-supplied half of a registered RJMCMC model:
// the structural parameters (name, dimension, proposal weights) live in
// the YAML models file, but the log-likelihood/log-prior callables and
// the KDE fit used for trans-dimensional jumps are Go values that cannot
// round-trip through YAML, so the caller supplies them directly, the same
// split ModelSpec/Model draws in internal/rjmcmc.
type ModelTarget struct {
	Name   string
	Target proposal.Target
	Init   []float64
	KDEFit *kde.Gaussian
	Seed   int64
}

// RJMCMCSampler drives the trans-dimensional wrapper (internal/rjmcmc) as
// a single-process loop, the top-level entry point for RJMCMC mode
// (cfg.RJMCMC.ModelsFile set), parallel to Sampler for plain PT-MCMC mode.
type RJMCMCSampler struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	phase   Phase

	registry *rjmcmc.Registry
	wrapper  *rjmcmc.Wrapper
	stores   map[string]*chainstore.Store

	niter int64
	thin  int
	isave int
}

// NewRJMCMC parses and validates cfg.RJMCMC.ModelsFile, registers one
// standalone adaptive sampler per model (matched against targets by
// name), and builds the jump wrapper starting in model `initial`.
func NewRJMCMC(cfg *config.Config, targets []ModelTarget, initial string, jumpProb float64) (*RJMCMCSampler, error) {
	if cfg.RJMCMC.ModelsFile == "" {
		return nil, fmt.Errorf("rjmcmc.models_file is required for RJMCMC mode")
	}
	if cfg.Run.Niter < 1 {
		return nil, fmt.Errorf("run.niter must be at least 1")
	}
	if cfg.Run.Thin < 1 {
		return nil, fmt.Errorf("run.thin must be at least 1")
	}
	if cfg.Sampler.OutDir == "" {
		return nil, fmt.Errorf("sampler.out_dir is required")
	}

	parser := rjmcmc.NewParser(nil)
	models, err := parser.ParseFile(cfg.RJMCMC.ModelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse models file: %w", err)
	}

	validator := rjmcmc.NewValidator()
	if err := validator.Validate(models); err != nil {
		return nil, fmt.Errorf("%w\n%s", err, validator.GetReport())
	}
	if validator.HasWarnings() {
		fmt.Print(validator.GetReport())
	}

	byName := make(map[string]ModelTarget, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}

	logger := logging.New(logging.Config{
		Level:  logging.Level(cfg.Logging.Level),
		Format: logging.Format(cfg.Logging.Format),
	})

	registry := rjmcmc.NewRegistry()
	stores := make(map[string]*chainstore.Store, len(models))

	for _, m := range models {
		mt, ok := byName[m.Name]
		if !ok {
			return nil, fmt.Errorf("models file references model %q with no matching target supplied", m.Name)
		}

		seed := mt.Seed
		if seed == 0 {
			seed = m.Seed
		}
		if seed == 0 {
			seed = cfg.Sampler.Seed
		}

		spec := rjmcmc.ModelSpec{
			Name:      m.Name,
			Ndim:      m.Ndim,
			Weights:   tempering.Weights{SCAM: m.SCAMWeight, AM: m.AMWeight, DE: m.DEWeight, KDE: m.KDEWeight},
			DEWindow:  m.DEWindow,
			KDEWindow: m.KDEWindow,
		}
		if err := registry.Register(spec, mt.Target, seed, mt.Init, mt.KDEFit); err != nil {
			return nil, fmt.Errorf("failed to register model %q: %w", m.Name, err)
		}

		store, err := chainstore.NewNamed(cfg.Sampler.OutDir, m.Name, cfg.Sampler.Resume, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open chain store for model %q: %w", m.Name, err)
		}
		stores[m.Name] = store
	}

	wrapper, err := rjmcmc.NewWrapper(registry, initial, cfg.Sampler.Seed, jumpProb)
	if err != nil {
		return nil, fmt.Errorf("failed to build RJMCMC wrapper: %w", err)
	}

	var mcol *metrics.Collector
	if cfg.Metrics.Enabled {
		mcol = metrics.New()
	}

	return &RJMCMCSampler{
		cfg:      cfg,
		logger:   logger,
		metrics:  mcol,
		phase:    PhaseConfig,
		registry: registry,
		wrapper:  wrapper,
		stores:   stores,
		niter:    cfg.Run.Niter,
		thin:     cfg.Run.Thin,
		isave:    cfg.Run.ISave,
	}, nil
}

// Logger returns the RJMCMCSampler's structured logger.
func (r *RJMCMCSampler) Logger() *logging.Logger { return r.logger }

// Run advances the trans-dimensional chain cfg.Run.Niter steps,
// thinning, flushing, and reporting the jump-acceptance rate the same
// way Sampler.Run reports per-rank acceptance rates.
func (r *RJMCMCSampler) Run(ctx context.Context) Result {
	start := time.Now()
	r.phase = PhaseRun

	if r.metrics != nil {
		if err := r.metrics.Serve(r.cfg.Metrics.ListenAddr); err != nil {
			r.logger.Warn("metrics server failed to start", "error", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = r.metrics.Shutdown(sctx)
			}()
		}
	}

	defer func() {
		for name, store := range r.stores {
			if err := store.Close(); err != nil {
				r.logger.Warn("failed to close chain store", "model", name, "error", err)
			}
		}
	}()

	for iter := int64(0); iter < r.niter; iter++ {
		select {
		case <-ctx.Done():
			r.phase = PhaseCompleted
			return Result{Phase: PhaseCompleted, Duration: time.Since(start)}
		default:
		}

		r.wrapper.Step()

		name := r.wrapper.CurrentModel()
		model := r.registry.Get(name)
		store := r.stores[name]

		if r.thin > 0 && iter%int64(r.thin) == 0 {
			acceptRate := 0.0
			if model.Rank.NIter > 0 {
				acceptRate = float64(model.Rank.NAccepted) / float64(model.Rank.NIter)
			}
			rec := chainstore.Record{
				LogPost:        model.State.LogL + model.State.LogPrior,
				LogL:           model.State.LogL,
				AcceptRate:     acceptRate,
				SwapAcceptRate: r.wrapper.JumpAcceptRate(),
				X:              model.State.X,
			}
			if err := store.Append(rec); err != nil {
				return r.fail(start, err)
			}
		}

		if r.isave > 0 && iter > 0 && iter%int64(r.isave) == 0 {
			if err := store.Flush(); err != nil {
				return r.fail(start, err)
			}
			r.metrics.ObserveJumpAcceptRate(r.wrapper.JumpAcceptRate())
			r.logger.Info("rjmcmc progress",
				"iteration", iter, "niter", r.niter,
				"current_model", name, "jump_accept_rate", r.wrapper.JumpAcceptRate())
		}
	}

	r.phase = PhaseCompleted
	return Result{Phase: PhaseCompleted, Duration: time.Since(start)}
}

func (r *RJMCMCSampler) fail(start time.Time, err error) Result {
	r.phase = PhaseFailed
	return Result{Phase: PhaseFailed, Duration: time.Since(start), Err: err}
}
