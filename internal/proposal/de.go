package proposal

import (
	"math"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/adapt"
)

// DE is the differential-evolution proposal: x' = x + gamma*(a-b) for two
// distinct points a, b drawn from the stored chain history.
type DE struct {
	buf *adapt.DEBuffer
}

// NewDE creates a DE kernel reading its history from buf.
func NewDE(buf *adapt.DEBuffer) *DE {
	return &DE{buf: buf}
}

func (k *DE) Name() string { return "DE" }

// Propose returns x unchanged (a no-op, symmetric) jump when the buffer
// has fewer than two stored points yet. Otherwise it returns x' = x +
// scale*(a-b) for two distinct stored points a, b, where scale is 1.0
// (a "mode jump") with probability 0.5, and otherwise
//
//	scale = u * 2.4/sqrt(2*dim) * sqrt(1/beta),  u ~ Uniform(0,1)
func (k *DE) Propose(rng *rand.Rand, x []float64, iter int, beta float64) ([]float64, float64) {
	a, b, ok := k.buf.Sample(rng.Intn)
	if !ok {
		proposed := make([]float64, len(x))
		copy(proposed, x)
		return proposed, 0
	}

	dim := len(x)
	var scale float64
	if rng.Float64() > 0.5 {
		scale = 1.0
	} else {
		scale = rng.Float64() * 2.4 / math.Sqrt(2*float64(dim)) * math.Sqrt(1/beta)
	}

	proposed := make([]float64, dim)
	for i := 0; i < dim; i++ {
		proposed[i] = x[i] + scale*(a[i]-b[i])
	}
	return proposed, 0
}
