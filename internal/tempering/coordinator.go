package tempering

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jihwankim/ptmcmc/internal/chainstore"
	"github.com/jihwankim/ptmcmc/internal/config"
	"github.com/jihwankim/ptmcmc/internal/ess"
	"github.com/jihwankim/ptmcmc/internal/logging"
	"github.com/jihwankim/ptmcmc/internal/metrics"
	"github.com/jihwankim/ptmcmc/internal/proposal"
	"gonum.org/v1/gonum/mat"
)

// Default buffer sizes for the adaptation state not exposed in config.
// The upstream sampler hardcodes equivalents of these; there was no
// config surface worth adding for them here either.
const (
	deBufferCapacity = 2000
	kdeRefitWindow   = 5000
	essObserveWindow = 4000
)

// Coordinator owns the whole ladder: one Rank per rung, the swap links
// between adjacent rungs, the shared termination signal, and (on rank 0)
// the effective-sample-size monitor. Run spawns one goroutine per rank,
// mirroring the one-process-per-MPI-rank layout of the upstream sampler
// with goroutines and channels standing in for mpi4py's Send/Recv/Iprobe.
type Coordinator struct {
	ranks  []*Rank
	links  []*swapLink // links[i] joins ranks[i] (cold) and ranks[i+1] (hot)
	term   *TermSignal
	monitor *ess.Monitor
	stores []*chainstore.Store

	progress *logging.ProgressReporter
	logger   *logging.Logger
	metrics  *metrics.Collector

	target proposal.Target
	init   []float64

	niter      int64
	thin       int
	isave      int
	burn       int64
	tskip      int
	covUpdate  int
	kdeUpdate  int
	neffTarget float64
	resume     bool
	outDir     string
	deWeight   int
}

// New builds a Coordinator from cfg. target supplies the user's
// log-likelihood/log-prior, and init is the starting point for a fresh
// (non-resumed) run.
func New(cfg *config.Config, target proposal.Target, init []float64, logger *logging.Logger, format logging.OutputFormat) (*Coordinator, error) {
	run := cfg.Run
	temps := Ladder(run.Ranks, run.Tmin, run.Tmax, cfg.Sampler.Ndim)
	betas := Betas(temps)

	weights := Weights{SCAM: run.SCAMWeight, AM: run.AMWeight, DE: run.DEWeight, KDE: run.KDEWeight}

	ranks := make([]*Rank, run.Ranks)
	stores := make([]*chainstore.Store, run.Ranks)
	for i := range ranks {
		rng := rand.New(rand.NewSource(cfg.Sampler.Seed + int64(i)*7919))
		rank, err := newRank(i, betas[i], temps[i], cfg.Sampler.Ndim, target, rng, weights, deBufferCapacity, kdeRefitWindow, i == 0)
		if err != nil {
			return nil, fmt.Errorf("failed to build rank %d: %w", i, err)
		}
		ranks[i] = rank

		store, err := chainstore.New(cfg.Sampler.OutDir, temps[i], cfg.Sampler.Resume, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open chain store for rank %d: %w", i, err)
		}
		stores[i] = store
	}

	links := make([]*swapLink, run.Ranks-1)
	for i := range links {
		links[i] = newSwapLink()
	}

	return &Coordinator{
		ranks:      ranks,
		links:      links,
		term:       NewTermSignal(),
		monitor:    ess.NewMonitor(cfg.Sampler.Ndim, essObserveWindow),
		stores:     stores,
		progress:   logging.NewProgressReporter(format, logger),
		logger:     logger,
		target:     target,
		init:       init,
		niter:      run.Niter,
		thin:       run.Thin,
		isave:      run.ISave,
		burn:       run.Burn,
		tskip:      run.Tskip,
		covUpdate:  run.CovUpdate,
		kdeUpdate:  run.KDEUpdate,
		neffTarget: run.Neff,
		resume:     cfg.Sampler.Resume,
		outDir:     cfg.Sampler.OutDir,
		deWeight:   run.DEWeight,
	}, nil
}

// SetMetrics attaches a Prometheus collector; reporting points fold their
// observations into it whenever it is non-nil. Must be called before Run.
func (c *Coordinator) SetMetrics(m *metrics.Collector) {
	c.metrics = m
}

// Run drives every rank to completion (niter iterations, or early
// termination via the shared TermSignal), then flushes and closes every
// chain store. It blocks until all ranks have stopped.
func (c *Coordinator) Run(ctx context.Context) error {
	c.term.WatchOSSignals(ctx)

	var wg sync.WaitGroup
	errCh := make(chan error, len(c.ranks))
	for i := range c.ranks {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := c.runRank(ctx, idx); err != nil {
				errCh <- fmt.Errorf("rank %d: %w", idx, err)
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			c.logger.Warn("failed to close chain store", "error", err)
		}
	}

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// runRank executes one rank's entire sampling loop.
func (c *Coordinator) runRank(ctx context.Context, idx int) error {
	r := c.ranks[idx]
	store := c.stores[idx]

	resumeState, err := chainstore.ResumeChain(c.outDir, r.Temp)
	if err != nil {
		return fmt.Errorf("failed to load resume state: %w", err)
	}

	state, startIter := c.initialState(r, resumeState)

	// Tracks whether addDEKernel has already fired via each of the two
	// independent (and mutually unguarded) trigger sites below, so a hot
	// rank whose DE and KDE broadcasts both arrive "fresh" in the same
	// run can double-register the DE kernel, as documented on
	// addDEKernel itself.
	deAddedOnDE, deAddedOnKDE := false, false

	for iter := startIter; iter < c.niter; iter++ {
		select {
		case <-ctx.Done():
			return nil
		case <-c.term.Done():
			if idx == 0 {
				c.progress.ReportComplete(c.runState(r, iter), c.term.Reason())
			}
			return nil
		default:
		}

		if r.bc != nil {
			polled := false
			if msg, ok := r.bc.pollCov(); ok {
				polled = true
				r.Cov.LoadSnapshot(msg.Mean, msg.Cov)
			}
			if msg, ok := r.bc.pollDE(); ok {
				polled = true
				wasEmpty := r.DE.Len() == 0
				r.DE.LoadSnapshot(msg.Points)
				if c.deWeight > 0 && wasEmpty && r.DE.Len() > 0 && !deAddedOnDE {
					if err := r.addDEKernel(c.deWeight); err != nil {
						return err
					}
					deAddedOnDE = true
				}
			}
			if msg, ok := r.bc.pollKDE(); ok && msg.Fit != nil {
				polled = true
				r.KDEKernel.SetFit(msg.Fit)
				if c.deWeight > 0 && r.DE.Len() > 0 && !deAddedOnKDE {
					if err := r.addDEKernel(c.deWeight); err != nil {
						return err
					}
					deAddedOnKDE = true
				}
			}
			if !polled {
				time.Sleep(time.Microsecond)
			}
		}

		var accepted bool
		state, accepted = r.Step.Once(r.rng, state)
		r.NIter++
		if accepted {
			r.NAccepted++
		}

		if idx == 0 {
			r.Cov.Update(state.X)
			r.DE.Append(state.X)
			r.KDERefitter.Observe(state.X)
			c.monitor.Observe(state.X)

			if c.covUpdate > 0 && iter > 0 && iter%int64(c.covUpdate) == 0 {
				r.Cov.Refresh()
				mean, cov := r.Cov.Snapshot()
				pts := r.DE.Snapshot()
				for _, hot := range c.ranks[1:] {
					sendLatest(hot.bc.cov, CovMsg{Mean: mean, Cov: cov})
					sendLatest(hot.bc.de, DEMsg{Points: pts})
				}
			}
			if c.kdeUpdate > 0 && iter > 0 && iter%int64(c.kdeUpdate) == 0 {
				if fit, ok := r.KDERefitter.Refit(r.rng); ok {
					r.KDEKernel.SetFit(fit)
					for _, hot := range c.ranks[1:] {
						sendLatest(hot.bc.kde, KDEMsg{Fit: fit})
					}
				}
			}
		}

		if c.tskip > 0 && iter > 0 && iter%int64(c.tskip) == 0 {
			if idx > 0 {
				link := c.links[idx-1]
				newState, accept := decideSwap(r.rng, link, c.ranks[idx-1].Beta, r.Beta, state)
				state = newState
				if accept {
					r.SwapAccepted++
				}
			}
			if idx < len(c.links) {
				link := c.links[idx]
				newState, accept := proposeSwap(link, state)
				state = newState
				r.SwapProposed++
				if accept {
					r.SwapAccepted++
				}
			}
		}

		if c.thin > 0 && iter%int64(c.thin) == 0 {
			if err := store.Append(c.record(r, state)); err != nil {
				return err
			}
		}

		if c.isave > 0 && iter > 0 && iter%int64(c.isave) == 0 {
			if err := store.Flush(); err != nil {
				return err
			}
			if idx == 0 {
				_, cov := r.Cov.Snapshot()
				if err := store.SaveCovariance(symToSlice(cov)); err != nil {
					c.logger.Warn("covariance snapshot failed", "error", err)
				}
			}
		}

		if idx == 0 && iter > c.burn && c.covUpdate > 0 && iter%int64(c.covUpdate) == 0 {
			neff, _ := c.monitor.EffectiveSampleSize(iter - c.burn)
			c.progress.ReportState(c.runStateWithNeff(r, iter, neff))
			c.metrics.ObserveEffectiveN(neff)
			if c.neffTarget > 0 && neff >= c.neffTarget {
				c.term.Trigger(fmt.Sprintf("reached target effective sample size %.0f", neff))
			}
		}

		if c.covUpdate > 0 && iter%int64(c.covUpdate) == 0 {
			rs := c.runState(r, iter)
			c.metrics.ObserveRank(idx, rs.AcceptRate, rs.SwapAcceptRate, int64(c.covUpdate))
		}
	}

	if err := store.Flush(); err != nil {
		return err
	}
	if idx == 0 {
		c.progress.ReportComplete(c.runState(r, c.niter), "reached niter")
	}
	return nil
}

// initialState resolves the rank's starting State and iteration counter,
// either fresh from c.init or replayed from an existing chain file.
// Replayed accept/swap counters are reconstructed from the stored
// fractional rates rather than recounted exactly, the same approximation
// chainstore.ReplayCounters documents.
func (c *Coordinator) initialState(r *Rank, resumed chainstore.ResumeState) (proposal.State, int64) {
	if !resumed.HadRecords {
		x := make([]float64, len(c.init))
		copy(x, c.init)
		logL := c.target.LogLikelihood(x)
		logPrior := c.target.LogPrior(x)
		return proposal.State{X: x, LogL: logL, LogPrior: logPrior}, 0
	}

	startIter := resumed.RowCount * int64(max(c.thin, 1))
	logPrior := resumed.Last.LogPost - r.Beta*resumed.Last.LogL
	state := proposal.State{X: resumed.Last.X, LogL: resumed.Last.LogL, LogPrior: logPrior}

	r.NIter = startIter
	r.NAccepted = chainstore.ReplayCounters(startIter, resumed.AcceptRate)
	if c.tskip > 0 {
		r.SwapProposed = startIter / int64(c.tskip)
	}
	r.SwapAccepted = chainstore.ReplayCounters(r.SwapProposed, resumed.SwapAccept)

	return state, startIter
}

func (c *Coordinator) record(r *Rank, state proposal.State) chainstore.Record {
	acceptRate := 0.0
	if r.NIter > 0 {
		acceptRate = float64(r.NAccepted) / float64(r.NIter)
	}
	swapRate := 0.0
	if r.SwapProposed > 0 {
		swapRate = float64(r.SwapAccepted) / float64(r.SwapProposed)
	}
	return chainstore.Record{
		LogPost:        r.Beta*state.LogL + state.LogPrior,
		LogL:           state.LogL,
		AcceptRate:     acceptRate,
		SwapAcceptRate: swapRate,
		X:              state.X,
	}
}

func (c *Coordinator) runState(r *Rank, iter int64) logging.RunState {
	return c.runStateWithNeff(r, iter, 0)
}

func (c *Coordinator) runStateWithNeff(r *Rank, iter int64, neff float64) logging.RunState {
	acceptRate := 0.0
	if r.NIter > 0 {
		acceptRate = float64(r.NAccepted) / float64(r.NIter)
	}
	swapRate := 0.0
	if r.SwapProposed > 0 {
		swapRate = float64(r.SwapAccepted) / float64(r.SwapProposed)
	}
	return logging.RunState{
		Iteration:      iter,
		Niter:          c.niter,
		AcceptRate:     acceptRate,
		SwapAcceptRate: swapRate,
		EffectiveN:     neff,
		Temperature:    r.Temp,
	}
}

func symToSlice(m *mat.SymDense) [][]float64 {
	n, _ := m.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

