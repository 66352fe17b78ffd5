package proposal

import (
	"math"
	"math/rand"
	"sort"

	"github.com/jihwankim/ptmcmc/internal/adapt"
)

// SCAM is the single-component adaptive Metropolis kernel: it perturbs x
// in the covariance eigenbasis, usually along a single eigenvector but
// occasionally along several at once.
type SCAM struct {
	cov *adapt.Covariance
}

// NewSCAM creates a SCAM kernel reading its eigenbasis from cov.
func NewSCAM(cov *adapt.Covariance) *SCAM {
	return &SCAM{cov: cov}
}

func (k *SCAM) Name() string { return "SCAM" }

// Propose draws a block of `neff` distinct, deduplicated eigen-indices,
// transforms x into the covariance eigenbasis, perturbs the chosen
// components by N(0, cd^2 * eigenvalue) with
//
//	cd = 2.4/sqrt(2*neff) * scale
//
// and transforms back. scale comes from the same three-way cascade as
// AM.Propose, then gets an additional sqrt(temp) boost whenever temp <=
// 100 (temp = 1/beta).
//
// The cascade is checked in the same order as the rest of this module's
// scale selection (see scaleCascade): `u > 0.9` is tested before
// `u > 0.97`, so once u clears 0.9 it can never also exceed 0.97 through
// the remaining branch — the scale=10 case is unreachable. This mirrors
// the upstream sampler's cascade ordering exactly and is left as-is.
func (k *SCAM) Propose(rng *rand.Rand, x []float64, iter int, beta float64) ([]float64, float64) {
	dim := k.cov.Dim()
	proposed := make([]float64, dim)
	copy(proposed, x)

	block := scamBlockSize(rng, dim)
	ind := scamIndices(rng, dim, block)
	neff := len(ind)

	scale := scaleCascade(rng)
	temp := 1 / beta
	if temp <= 100 {
		scale *= math.Sqrt(temp)
	}
	cd := 2.4 / math.Sqrt(2*float64(neff)) * scale

	u, s, ok := k.cov.Eigenbasis()
	if !ok || u == nil {
		// No eigenbasis yet: the eigenbasis is effectively the identity.
		for _, i := range ind {
			proposed[i] += rng.NormFloat64() * cd
		}
		return proposed, 0
	}

	rows, cols := u.Dims()
	y := make([]float64, dim)
	for col := 0; col < dim && col < cols; col++ {
		var sum float64
		for row := 0; row < rows && row < dim; row++ {
			sum += u.At(row, col) * x[row]
		}
		y[col] = sum
	}
	for _, i := range ind {
		if i >= len(s) {
			continue
		}
		eig := s[i]
		if eig < 0 {
			eig = 0
		}
		y[i] += rng.NormFloat64() * cd * math.Sqrt(eig)
	}
	for row := 0; row < rows && row < dim; row++ {
		var sum float64
		for col := 0; col < dim && col < cols; col++ {
			sum += u.At(row, col) * y[col]
		}
		proposed[row] = sum
	}
	return proposed, 0
}

// scamBlockSize draws the number of (possibly repeated) raw index draws
// used to build the perturbed-index set: most of the time a single index,
// occasionally half the dimensions, occasionally 5, and rarely every
// dimension at once.
func scamBlockSize(rng *rand.Rand, dim int) int {
	prob := rng.Float64()
	switch {
	case prob > 1-1.0/float64(dim):
		return dim
	case prob > 1-2.0/float64(dim):
		return int(math.Ceil(float64(dim) / 2))
	case prob > 0.8:
		return 5
	default:
		return 1
	}
}

// scamIndices draws `block` indices in [0,dim) with replacement and
// dedupes them, the Go equivalent of np.unique(np.random.randint(...)).
func scamIndices(rng *rand.Rand, dim, block int) []int {
	seen := make(map[int]bool, block)
	ind := make([]int, 0, block)
	for i := 0; i < block; i++ {
		j := rng.Intn(dim)
		if !seen[j] {
			seen[j] = true
			ind = append(ind, j)
		}
	}
	sort.Ints(ind)
	return ind
}

// scaleCascade draws the jump-size multiplier. See SCAM.Propose for the
// deliberately preserved branch-ordering quirk.
func scaleCascade(rng *rand.Rand) float64 {
	u := rng.Float64()
	switch {
	case u > 0.9:
		return 0.2
	case u > 0.97:
		return 10
	default:
		return 1
	}
}
