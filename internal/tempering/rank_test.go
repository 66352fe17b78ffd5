package tempering

import (
	"testing"

	"github.com/jihwankim/ptmcmc/internal/proposal"
)

func gaussianTarget() proposal.Target {
	return proposal.Target{
		LogLikelihood: func(x []float64) float64 { return -0.5 * x[0] * x[0] },
		LogPrior:      func(x []float64) float64 { return 0 },
	}
}

func TestNewColdRankIsSingleRankDegenerate(t *testing.T) {
	r, err := NewColdRank(1, gaussianTarget(), 1, Weights{SCAM: 10, AM: 10, DE: 10, KDE: 0}, 50, 50)
	if err != nil {
		t.Fatalf("NewColdRank: %v", err)
	}
	if r.Beta != 1.0 || r.Temp != 1.0 {
		t.Fatalf("NewColdRank beta/temp = %v/%v, want 1.0/1.0", r.Beta, r.Temp)
	}
	if r.KDERefitter == nil {
		t.Fatal("NewColdRank should own a KDERefitter (it is the cold rank)")
	}
}

func TestRankOnceTracksAcceptCounters(t *testing.T) {
	target := gaussianTarget()
	r, err := NewColdRank(1, target, 7, Weights{SCAM: 10, AM: 10, DE: 10, KDE: 0}, 50, 50)
	if err != nil {
		t.Fatalf("NewColdRank: %v", err)
	}
	state := proposal.State{X: []float64{5}, LogL: target.LogLikelihood([]float64{5}), LogPrior: 0}

	for i := 0; i < 300; i++ {
		state, _ = r.Once(state)
	}

	if r.NIter != 300 {
		t.Fatalf("NIter = %d, want 300", r.NIter)
	}
	if r.NAccepted < 0 || r.NAccepted > r.NIter {
		t.Fatalf("NAccepted = %d out of bounds [0,%d]", r.NAccepted, r.NIter)
	}
	rate := float64(r.NAccepted) / float64(r.NIter)
	if rate <= 0 || rate > 1 {
		t.Errorf("acceptance rate %v out of the (0,1] range expected for a well-mixing chain", rate)
	}
}

// TestAddDEKernelCanDoubleRegister documents the deliberately preserved
// quirk: addDEKernel's own call site carries no Cycle.Has guard, so
// invoking it twice (as a rank can if it observes more than one "first"
// DE broadcast) registers the DE kernel's weighted slots twice over,
// unlike the guarded construction-time Add call.
func TestAddDEKernelCanDoubleRegister(t *testing.T) {
	r, err := NewColdRank(2, gaussianTarget(), 3, Weights{SCAM: 5, AM: 5, DE: 0, KDE: 0}, 50, 50)
	if err != nil {
		t.Fatalf("NewColdRank: %v", err)
	}
	before := r.Cycle.Len()

	if err := r.addDEKernel(4); err != nil {
		t.Fatalf("addDEKernel: %v", err)
	}
	afterFirst := r.Cycle.Len()
	if afterFirst != before+4 {
		t.Fatalf("after first addDEKernel: Len() = %d, want %d", afterFirst, before+4)
	}

	if err := r.addDEKernel(4); err != nil {
		t.Fatalf("second addDEKernel: %v", err)
	}
	afterSecond := r.Cycle.Len()
	if afterSecond != afterFirst+4 {
		t.Fatalf("after second addDEKernel: Len() = %d, want %d (unguarded double-registration should add again)", afterSecond, afterFirst+4)
	}
}
