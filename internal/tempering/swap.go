package tempering

import (
	"math"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/proposal"
)

// swapLink is the channel pair joining adjacent ranks r (colder, lower
// beta index) and r+1 (hotter). The colder rank proposes; the hotter rank
// decides, matching the upstream sampler's asymmetric swap roles.
type swapLink struct {
	propose chan proposal.State // cold -> hot: cold's current state
	decide  chan swapDecision   // hot -> cold: accept? and hot's original state
}

type swapDecision struct {
	Accept bool
	State  proposal.State
}

func newSwapLink() *swapLink {
	return &swapLink{
		propose: make(chan proposal.State),
		decide:  make(chan swapDecision),
	}
}

// proposeSwap runs the cold side of the handshake: send the current
// state, then block for the hotter rank's decision. On accept, the
// caller's state becomes the hotter rank's former state.
//
// The asymmetric swap-proposed accounting in coordinator.runRank is rooted
// here: only the initiating (cold) side of this call increments its own
// swapProposed counter. The hottest rank never calls proposeSwap (it has
// no neighbor above), and a rank's own swapProposed count is therefore
// driven exclusively by this side of the link, never by decideSwap below.
func proposeSwap(link *swapLink, cur proposal.State) (proposal.State, bool) {
	link.propose <- cur
	dec := <-link.decide
	if dec.Accept {
		return dec.State, true
	}
	return cur, false
}

// decideSwap runs the hot side: receive the proposing rank's state,
// compute the Metropolis swap-acceptance probability from the two
// log-likelihoods and betas, and report the decision back.
func decideSwap(rng *rand.Rand, link *swapLink, betaCold, betaHot float64, hotState proposal.State) (proposal.State, bool) {
	coldState := <-link.propose

	logAlpha := (betaCold - betaHot) * (hotState.LogL - coldState.LogL)
	accept := math.Log(rng.Float64()) < logAlpha

	link.decide <- swapDecision{Accept: accept, State: hotState}

	if accept {
		return coldState, true
	}
	return hotState, false
}
