package proposal

import (
	"math/rand"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/adapt"
)

// TestScaleCascadeScale10IsUnreachable documents the deliberately
// preserved branch-ordering quirk in scaleCascade: because `u > 0.9` is
// tested before `u > 0.97`, any u that clears 0.9 returns scale=0.2
// before the second condition is ever evaluated, so the scale=10 branch
// can never fire for any value of u in [0,1).
func TestScaleCascadeScale10IsUnreachable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[float64]int{}
	for i := 0; i < 200000; i++ {
		seen[scaleCascade(rng)]++
	}
	if seen[10] != 0 {
		t.Errorf("scaleCascade returned 10 %d times over 200000 draws, want 0 (unreachable branch)", seen[10])
	}
	if seen[0.2] == 0 || seen[1] == 0 {
		t.Fatalf("expected both the 0.2 and 1 branches to fire over 200000 draws, got %v", seen)
	}
}

func TestSCAMProposeFallsBackToIdentityWithoutEigenbasis(t *testing.T) {
	cov := adapt.NewCovariance(2)
	k := NewSCAM(cov)
	rng := rand.New(rand.NewSource(2))

	x := []float64{1, 2}
	proposed, logQRatio := k.Propose(rng, x, 0, 1.0)
	if logQRatio != 0 {
		t.Errorf("SCAM is a symmetric proposal, logQRatio = %v, want 0", logQRatio)
	}
	if len(proposed) != 2 {
		t.Fatalf("len(proposed) = %d, want 2", len(proposed))
	}
}
