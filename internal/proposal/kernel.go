// Package proposal implements the adaptive proposal kernels (SCAM, AM, DE,
// KDE) and the weighted randomized proposal cycle that drives them.
package proposal

import (
	"math"
	"math/rand"
)

// State is one point in parameter space together with its cached
// log-likelihood and log-prior, as carried between MCMC steps.
type State struct {
	X        []float64
	LogL     float64
	LogPrior float64
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	x := make([]float64, len(s.X))
	copy(x, s.X)
	return State{X: x, LogL: s.LogL, LogPrior: s.LogPrior}
}

// Kernel proposes a new point from the current one: propose(x, iter, beta)
// -> (y, qxy). iter is the 0-based iteration count this proposal is being
// drawn for and beta the chain's current inverse temperature; SCAM/AM use
// beta for their temperature-scaled step size and DE for its sqrt(1/beta)
// scale. It returns the proposed point and the log of the Hastings
// correction q(x|x')/q(x'|x); kernels whose proposal density is symmetric
// (SCAM, AM, DE) return 0.
type Kernel interface {
	Name() string
	Propose(rng *rand.Rand, x []float64, iter int, beta float64) (proposed []float64, logQRatio float64)
}

// Target bundles the user-supplied log-likelihood and log-prior, the Go
// analogue of binding extra positional arguments to a callable.
type Target struct {
	LogLikelihood func(x []float64) float64
	LogPrior      func(x []float64) float64
}

// LogPosterior evaluates the tempered log posterior log L(x)*beta + log p(x).
func (t Target) LogPosterior(x []float64, beta float64) (logL, logPrior, logPost float64) {
	logPrior = t.LogPrior(x)
	if math.IsInf(logPrior, -1) {
		return math.Inf(-1), math.Inf(-1), math.Inf(-1)
	}
	logL = t.LogLikelihood(x)
	return logL, logPrior, beta*logL + logPrior
}
