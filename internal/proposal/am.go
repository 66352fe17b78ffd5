package proposal

import (
	"math"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/adapt"
	"github.com/jihwankim/ptmcmc/internal/randutil"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// AM is the (full-vector) Adaptive Metropolis kernel: propose x' ~
// N(x, c^2 * Sigma) using the full running covariance estimate, rather
// than SCAM's single-eigenvector perturbation.
type AM struct {
	cov *adapt.Covariance
}

// NewAM creates an AM kernel reading its covariance from cov.
func NewAM(cov *adapt.Covariance) *AM {
	return &AM{cov: cov}
}

func (k *AM) Name() string { return "AM" }

// Propose draws x' from N(x, c^2 * Sigma) where
//
//	c = 2.4/sqrt(2*dim) * sqrt(scale)
//
// scale coming from the same three-way cascade as SCAM.Propose, boosted
// by an additional sqrt(temp) whenever temp <= 100 (temp = 1/beta).
func (k *AM) Propose(rng *rand.Rand, x []float64, iter int, beta float64) ([]float64, float64) {
	_, sigma := k.cov.Snapshot()
	scale := scaleCascade(rng)
	temp := 1 / beta
	if temp <= 100 {
		scale *= math.Sqrt(temp)
	}

	dim := sigma.SymmetricDim()
	cd := 2.4 / math.Sqrt(2*float64(dim)) * math.Sqrt(scale)

	scaled := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			scaled.SetSym(i, j, cd*cd*sigma.At(i, j))
		}
	}

	normal, ok := distmv.NewNormal(x, scaled, randutil.V2Source{R: rng})
	if !ok {
		// Degenerate covariance: fall back to an uncorrelated isotropic step.
		proposed := make([]float64, dim)
		for i := range proposed {
			proposed[i] = x[i] + cd*rng.NormFloat64()
		}
		return proposed, 0
	}
	return normal.Rand(nil), 0
}
