// Package sampler wires the configuration, logging, metrics, and
// tempering packages into the top-level entry point the CLI drives:
// one constructor, one Run, mirroring spec.md §6's
// constructor/initialize/sample option surface.
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/ptmcmc/internal/config"
	"github.com/jihwankim/ptmcmc/internal/logging"
	"github.com/jihwankim/ptmcmc/internal/metrics"
	"github.com/jihwankim/ptmcmc/internal/proposal"
	"github.com/jihwankim/ptmcmc/internal/tempering"
)

// Phase is one stage of a Sampler run, reported on every transition the
// same way the upstream framework logs its test-execution state machine.
type Phase int

const (
	PhaseConfig Phase = iota
	PhaseInit
	PhaseRun
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseConfig:
		return "CONFIG"
	case PhaseInit:
		return "INIT"
	case PhaseRun:
		return "RUN"
	case PhaseCompleted:
		return "COMPLETED"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Result summarizes a completed (or failed) Run call.
type Result struct {
	Phase    Phase
	Duration time.Duration
	Err      error
}

// Sampler is the fixed-dimension PT-MCMC entry point: it owns the logger,
// the optional metrics endpoint, and the rank coordinator, and exposes a
// single Run call that drives the whole lifecycle to completion.
type Sampler struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	phase   Phase

	target proposal.Target
	init   []float64

	coordinator *tempering.Coordinator
}

// New validates cfg and builds a Sampler. target supplies the
// log-likelihood/log-prior callables, and init is the starting point for
// a fresh (non-resumed) run; it is ignored when cfg.Sampler.Resume is set
// and an existing chain file is found.
func New(cfg *config.Config, target proposal.Target, init []float64) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(init) != cfg.Sampler.Ndim {
		return nil, fmt.Errorf("init has length %d, want %d (sampler.ndim)", len(init), cfg.Sampler.Ndim)
	}

	logger := logging.New(logging.Config{
		Level:  logging.Level(cfg.Logging.Level),
		Format: logging.Format(cfg.Logging.Format),
	})

	var mcol *metrics.Collector
	if cfg.Metrics.Enabled {
		mcol = metrics.New()
	}

	x := make([]float64, len(init))
	copy(x, init)

	return &Sampler{
		cfg:     cfg,
		logger:  logger,
		metrics: mcol,
		phase:   PhaseConfig,
		target:  target,
		init:    x,
	}, nil
}

// Logger returns the Sampler's structured logger, for callers (the CLI)
// that want to log outside the Run lifecycle.
func (s *Sampler) Logger() *logging.Logger { return s.logger }

// Run drives the sampler through initialization and the full ladder run,
// blocking until niter iterations complete, the context is cancelled, or
// the ESS monitor signals early termination.
func (s *Sampler) Run(ctx context.Context) Result {
	start := time.Now()

	s.transition(PhaseInit)
	if err := s.initialize(); err != nil {
		return s.fail(start, err)
	}

	if s.metrics != nil {
		if err := s.metrics.Serve(s.cfg.Metrics.ListenAddr); err != nil {
			s.logger.Warn("metrics server failed to start", "error", err)
		} else {
			s.logger.Info("metrics endpoint listening", "addr", s.cfg.Metrics.ListenAddr)
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := s.metrics.Shutdown(sctx); err != nil {
					s.logger.Warn("metrics server shutdown failed", "error", err)
				}
			}()
		}
	}

	s.transition(PhaseRun)
	if err := s.coordinator.Run(ctx); err != nil {
		return s.fail(start, err)
	}

	s.transition(PhaseCompleted)
	return Result{Phase: PhaseCompleted, Duration: time.Since(start)}
}

func (s *Sampler) initialize() error {
	format := logging.OutputFormat(s.cfg.Logging.Format)
	if format != logging.OutputJSON {
		format = logging.OutputText
	}

	coord, err := tempering.New(s.cfg, s.target, s.init, s.logger, format)
	if err != nil {
		return fmt.Errorf("failed to build coordinator: %w", err)
	}
	coord.SetMetrics(s.metrics)
	s.coordinator = coord
	return nil
}

func (s *Sampler) transition(p Phase) {
	s.logger.Info("phase transition", "from", s.phase.String(), "to", p.String())
	s.phase = p
}

func (s *Sampler) fail(start time.Time, err error) Result {
	s.transition(PhaseFailed)
	return Result{Phase: PhaseFailed, Duration: time.Since(start), Err: err}
}
