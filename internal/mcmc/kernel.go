// Package mcmc implements the single-chain Metropolis-Hastings step shared
// by every rank of the PT-MCMC coordinator.
package mcmc

import (
	"math"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/proposal"
)

// Step runs one Metropolis-Hastings iteration at a fixed inverse
// temperature Beta, drawing its proposal from Cycle.
type Step struct {
	Target proposal.Target
	Cycle  *proposal.Cycle
	Beta   float64

	// Iter counts the iterations this Step has run, for the iter argument
	// passed to Kernel.Propose.
	Iter int
}

// Once advances cur by one proposal/accept-reject iteration, returning the
// resulting state and whether the proposal was accepted.
func (s *Step) Once(rng *rand.Rand, cur proposal.State) (proposal.State, bool) {
	k := s.Cycle.Next()
	if k == nil {
		return cur, false
	}

	proposed, logQRatio := k.Propose(rng, cur.X, s.Iter, s.Beta)
	s.Iter++
	if s.Cycle.Aux != nil {
		refined, auxRatio := s.Cycle.Aux(rng, proposed)
		proposed = refined
		logQRatio += auxRatio
	}

	logL, logPrior, logPost := s.Target.LogPosterior(proposed, s.Beta)
	if math.IsInf(logPost, -1) {
		return cur, false
	}

	curLogPost := s.Beta*cur.LogL + cur.LogPrior
	logAlpha := logPost - curLogPost + logQRatio

	if math.Log(rng.Float64()) < logAlpha {
		return proposal.State{X: proposed, LogL: logL, LogPrior: logPrior}, true
	}
	return cur, false
}
