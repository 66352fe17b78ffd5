package tempering

import (
	"math/rand"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/proposal"
)

// TestDecideSwapAlwaysAcceptsEqualBetas checks the degenerate case of the
// Metropolis swap-acceptance law log(u) < (betaCold-betaHot)*(LogL_hot -
// LogL_cold): when the two betas are equal the exponent is always zero,
// so every draw of u in [0,1) satisfies log(u) < 0 and the swap is always
// accepted, independent of the two states' likelihoods.
func TestDecideSwapAlwaysAcceptsEqualBetas(t *testing.T) {
	link := newSwapLink()
	rng := rand.New(rand.NewSource(1))

	cold := proposal.State{X: []float64{0}, LogL: -100, LogPrior: 0}
	hot := proposal.State{X: []float64{1}, LogL: -1, LogPrior: 0}

	done := make(chan struct{})
	go func() {
		link.propose <- cold
		<-link.decide
		close(done)
	}()

	result, accepted := decideSwap(rng, link, 1.0, 1.0, hot)
	<-done

	if !accepted {
		t.Fatal("equal-beta swap should always accept")
	}
	if result.LogL != cold.LogL {
		t.Errorf("decideSwap returned state with LogL %v, want the proposing rank's cold state %v", result.LogL, cold.LogL)
	}
}

// TestDecideSwapRejectsWhenHotIsMuchWorse checks the law's other
// direction: a large positive (betaCold-betaHot) combined with a large
// negative (LogL_hot - LogL_cold) drives logAlpha to a large negative
// number, which no draw of u in [0,1) can satisfy.
func TestDecideSwapRejectsWhenHotIsMuchWorse(t *testing.T) {
	link := newSwapLink()
	rng := rand.New(rand.NewSource(2))

	cold := proposal.State{X: []float64{0}, LogL: 0, LogPrior: 0}
	hot := proposal.State{X: []float64{1}, LogL: -1e6, LogPrior: 0}

	done := make(chan struct{})
	go func() {
		link.propose <- cold
		<-link.decide
		close(done)
	}()

	result, accepted := decideSwap(rng, link, 2.0, 1.0, hot)
	<-done

	if accepted {
		t.Fatal("swap with an overwhelmingly unfavorable log-likelihood gap should reject")
	}
	if result.LogL != hot.LogL {
		t.Errorf("rejected decideSwap should return the hot rank's own original state unchanged")
	}
}

// TestProposeSwapReturnsHotStateOnAccept confirms the cold-side handshake:
// on acceptance, proposeSwap's caller receives the hot rank's former
// state, and on rejection it keeps its own.
func TestProposeSwapReturnsHotStateOnAccept(t *testing.T) {
	link := newSwapLink()
	cold := proposal.State{X: []float64{0}, LogL: -1, LogPrior: 0}
	hot := proposal.State{X: []float64{9}, LogL: -1, LogPrior: 0}

	go func() {
		got := <-link.propose
		if got.LogL != cold.LogL {
			t.Errorf("hot side received LogL %v, want %v", got.LogL, cold.LogL)
		}
		link.decide <- swapDecision{Accept: true, State: hot}
	}()

	result, accepted := proposeSwap(link, cold)
	if !accepted {
		t.Fatal("expected accept=true from a forced accept decision")
	}
	if result.LogL != hot.LogL {
		t.Errorf("proposeSwap on accept returned LogL %v, want hot's %v", result.LogL, hot.LogL)
	}
}
