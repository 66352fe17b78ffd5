package tempering

import (
	"fmt"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/adapt"
	"github.com/jihwankim/ptmcmc/internal/mcmc"
	"github.com/jihwankim/ptmcmc/internal/proposal"
)

// Rank is one temperature rung of the ladder: a single-threaded MCMC chain
// with its own proposal cycle and adaptation state, running as one
// goroutine. Rank 0 (beta=1, the cold chain) owns the authoritative
// covariance/DE/KDE estimators; every other rank holds a read-only copy
// refreshed by broadcast.
type Rank struct {
	ID   int
	Beta float64
	Temp float64

	Cov       *adapt.Covariance
	DE        *adapt.DEBuffer
	KDEKernel *proposal.KDE
	Cycle     *proposal.Cycle
	Step      *mcmc.Step

	// KDERefitter is non-nil only on rank 0, which owns the chain history
	// the KDE proposal is periodically refit against.
	KDERefitter *adapt.KDERefitter

	rng *rand.Rand
	bc  *broadcast // nil on rank 0

	NAccepted    int64
	NIter        int64
	SwapProposed int64
	SwapAccepted int64
}

// newRank builds a rank at the given ladder position. cycleWeights gives
// the SCAM/AM/DE/KDE weights from config; deWindow/kdeWindow size the
// adaptation buffers.
func newRank(id int, beta, temp float64, dim int, target proposal.Target, rng *rand.Rand, weights Weights, deWindow, kdeWindow int, isCold bool) (*Rank, error) {
	cov := adapt.NewCovariance(dim)
	de := adapt.NewDEBuffer(deWindow)
	kdeKernel := proposal.NewKDE()

	// SCAM and AM are mandatory: every rank always runs them, so a
	// non-positive weight for either is a genuine configuration error. DE
	// and KDE are legitimately optional at construction time (DE is
	// usually added later via addDEKernel once a hot rank's buffer has
	// been broadcast; KDE only once a fit exists), so a non-positive
	// weight for those simply skips registering the kernel rather than
	// erroring.
	cycle := proposal.NewCycle(rng)
	if err := cycle.Add(proposal.NewSCAM(cov), weights.SCAM); err != nil {
		return nil, fmt.Errorf("rank %d: %w", id, err)
	}
	if err := cycle.Add(proposal.NewAM(cov), weights.AM); err != nil {
		return nil, fmt.Errorf("rank %d: %w", id, err)
	}
	if weights.DE > 0 {
		if err := cycle.Add(proposal.NewDE(de), weights.DE); err != nil {
			return nil, fmt.Errorf("rank %d: %w", id, err)
		}
	}
	if weights.KDE > 0 {
		if err := cycle.Add(kdeKernel, weights.KDE); err != nil {
			return nil, fmt.Errorf("rank %d: %w", id, err)
		}
	}

	r := &Rank{
		ID:        id,
		Beta:      beta,
		Temp:      temp,
		Cov:       cov,
		DE:        de,
		KDEKernel: kdeKernel,
		Cycle:     cycle,
		Step:      &mcmc.Step{Target: target, Cycle: cycle, Beta: beta},
		rng:       rng,
	}
	if isCold {
		r.KDERefitter = adapt.NewKDERefitter(kdeWindow)
	} else {
		r.bc = newBroadcast()
	}
	return r, nil
}

// Weights holds the proposal cycle weights read from config.RunConfig.
type Weights struct {
	SCAM, AM, DE, KDE int
}

// NewColdRank builds a standalone beta=1 adaptive chain — the K=1
// degenerate case of a parallel-tempering sampler, per Ladder's
// single-rank branch — for use outside a full Coordinator. The RJMCMC
// wrapper holds one of these per registered model rather than a nested
// multi-rank ladder per model, since the spec describes the RJMCMC layer
// as a thin composition over the core sampler, not a second dimension of
// parallelism.
func NewColdRank(dim int, target proposal.Target, seed int64, weights Weights, deWindow, kdeWindow int) (*Rank, error) {
	rng := rand.New(rand.NewSource(seed))
	return newRank(0, 1.0, 1.0, dim, target, rng, weights, deWindow, kdeWindow, true)
}

// Once advances this rank's chain by a single Metropolis-Hastings step and
// folds the resulting point into its own adaptation state (covariance, DE
// buffer, KDE refit history). Intended for a rank built via NewColdRank
// and driven directly, outside a Coordinator's per-iteration loop.
func (r *Rank) Once(cur proposal.State) (proposal.State, bool) {
	next, accepted := r.Step.Once(r.rng, cur)
	r.NIter++
	if accepted {
		r.NAccepted++
	}
	if r.KDERefitter != nil {
		r.Cov.Update(next.X)
		r.DE.Append(next.X)
		r.KDERefitter.Observe(next.X)
	}
	return next, accepted
}

// addDEKernel re-registers the DE kernel on this rank's cycle. A cold
// rank (or a hot rank configured with weights.DE > 0) already has the DE
// kernel from construction; this is called again the first time a hot
// rank receives its first DE broadcast, on the theory that a DE kernel
// backed by an empty buffer is worth re-weighting once real history
// arrives. The caller (coordinator.runRank) guards each of its own two
// trigger sites with its own "already added" flag, but does not check
// Cycle.Has here, so a rank that receives more than one "first" broadcast
// (possible after a KDE/Cov broadcast race) can still register the DE
// kernel twice, doubling its effective weight in the cycle. This mirrors
// the upstream sampler's own double-add risk and is left unguarded here
// rather than fixed.
func (r *Rank) addDEKernel(weight int) error {
	return r.Cycle.Add(proposal.NewDE(r.DE), weight)
}
