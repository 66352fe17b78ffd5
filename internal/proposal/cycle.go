package proposal

import (
	"fmt"
	"math/rand"
)

// Cycle holds a kernel list built by repeating each registered kernel
// `weight` times, then walks it in a randomized order that is
// re-generated by bootstrap sampling (drawing len(list) indices with
// rng.Intn, i.e. with replacement) rather than by a permutation shuffle.
// This means the same kernel can be visited twice in a row, and some
// kernels in the underlying list may never be visited in a given
// traversal — this is how the upstream sampler randomizes its cycle and
// is preserved rather than "fixed" to an unbiased shuffle.
type Cycle struct {
	kernels []Kernel
	order   []int
	pos     int
	rng     *rand.Rand

	// Aux, if set, is applied to the chosen kernel's proposal as an
	// optional post-proposal refinement step before the MH test. It
	// mirrors the upstream sampler's auxiliary-jump hook; nil by default.
	Aux func(rng *rand.Rand, proposed []float64) ([]float64, float64)
}

// NewCycle creates an empty Cycle driven by rng.
func NewCycle(rng *rand.Rand) *Cycle {
	return &Cycle{rng: rng}
}

// Add registers kernel, repeated `weight` times in the underlying list,
// then re-randomizes the traversal order. A zero or negative weight is a
// fatal configuration error — callers that mean to leave a kernel out
// entirely (an optional kernel with no weight configured) must check
// that themselves and skip the call, rather than rely on Add to swallow
// it silently.
func (c *Cycle) Add(k Kernel, weight int) error {
	if weight <= 0 {
		return fmt.Errorf("proposal: cannot add kernel %q to cycle with weight %d", k.Name(), weight)
	}
	for i := 0; i < weight; i++ {
		c.kernels = append(c.kernels, k)
	}
	c.randomize()
	return nil
}

// Has reports whether a kernel with the given name is already registered,
// used by callers that must guard against double-registering a kernel
// (see internal/tempering/rank.go for the one call site that does not).
func (c *Cycle) Has(name string) bool {
	for _, k := range c.kernels {
		if k.Name() == name {
			return true
		}
	}
	return false
}

// Len returns the size of the underlying (weighted) kernel list.
func (c *Cycle) Len() int { return len(c.kernels) }

func (c *Cycle) randomize() {
	n := len(c.kernels)
	if n == 0 {
		c.order = nil
		c.pos = 0
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = c.rng.Intn(n) // bootstrap draw, not a permutation
	}
	c.order = order
	c.pos = 0
}

// Next returns the next kernel in the traversal, re-randomizing once the
// current traversal is exhausted.
func (c *Cycle) Next() Kernel {
	if len(c.kernels) == 0 {
		return nil
	}
	if c.pos >= len(c.order) {
		c.randomize()
	}
	k := c.kernels[c.order[c.pos]]
	c.pos++
	return k
}
