package proposal

import (
	"math/rand"
	"sync"

	"github.com/jihwankim/ptmcmc/internal/kde"
)

// KDE proposes an independent jump drawn from a Gaussian KDE fit to the
// chain's own history. Because the proposal density is not symmetric
// (q(x'|x) depends only on x', not x), Propose returns a non-zero Hastings
// correction.
type KDE struct {
	mu  sync.RWMutex
	fit *kde.Gaussian
}

// NewKDE creates a KDE kernel with no fit yet; Propose is a no-op until
// SetFit is called for the first time.
func NewKDE() *KDE {
	return &KDE{}
}

func (k *KDE) Name() string { return "KDE" }

// SetFit installs a freshly refit density, replacing any previous one.
func (k *KDE) SetFit(fit *kde.Gaussian) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.fit = fit
}

// Propose draws an independent sample from the current fit and returns the
// log Hastings ratio log q(x|x') - log q(x'|x) for the Metropolis
// acceptance test.
func (k *KDE) Propose(rng *rand.Rand, x []float64, iter int, beta float64) ([]float64, float64) {
	k.mu.RLock()
	fit := k.fit
	k.mu.RUnlock()

	if fit == nil {
		proposed := make([]float64, len(x))
		copy(proposed, x)
		return proposed, 0
	}

	proposed := fit.Sample(rng)
	logQRatio := fit.LogProb(x) - fit.LogProb(proposed)
	return proposed, logQRatio
}
