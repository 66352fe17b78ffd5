package targets_test

import (
	"math"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/targets"
)

func TestLookupKnownNames(t *testing.T) {
	names := []string{"gaussian1d", "gaussian5d", "rosenbrock2d", "priorstress"}
	for _, n := range names {
		t.Run(n, func(t *testing.T) {
			target, init, err := targets.Lookup(n)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", n, err)
			}
			if target.LogLikelihood == nil || target.LogPrior == nil {
				t.Fatalf("Lookup(%q) returned a Target with nil callables", n)
			}
			logL := target.LogLikelihood(init)
			logP := target.LogPrior(init)
			if math.IsNaN(logL) || math.IsNaN(logP) {
				t.Errorf("Lookup(%q): logL/logP at the initial point is NaN", n)
			}
		})
	}
}

func TestLookupUnknownNameErrors(t *testing.T) {
	if _, _, err := targets.Lookup("not-a-real-target"); err == nil {
		t.Fatal("expected an error for an unknown target name")
	}
}

func TestPriorRejectionStressRejectsOutsideUnitBall(t *testing.T) {
	target, _, err := targets.Lookup("priorstress")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	inside := target.LogPrior([]float64{0.1, 0.1})
	outside := target.LogPrior([]float64{5, 5})
	if math.IsInf(inside, -1) {
		t.Error("a point inside the unit ball should not be prior-rejected")
	}
	if !math.IsInf(outside, -1) {
		t.Error("a point outside the unit ball should have logPrior = -Inf")
	}
}

func TestGaussianNDDimension(t *testing.T) {
	target, init, err := targets.Lookup("gaussian5d")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(init) != 5 {
		t.Fatalf("len(init) = %d, want 5", len(init))
	}
	if got := target.LogLikelihood(make([]float64, 5)); got != 0 {
		t.Errorf("logL at origin = %v, want 0", got)
	}
}

func TestRosenbrock2DMaximumAtOne(t *testing.T) {
	target, _, err := targets.Lookup("rosenbrock2d")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := target.LogLikelihood([]float64{1, 1}); got != 0 {
		t.Errorf("logL at the Rosenbrock optimum (1,1) = %v, want 0", got)
	}
}
