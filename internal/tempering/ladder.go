// Package tempering implements the parallel-tempering coordinator: one
// goroutine per rank, communicating over channels in place of the
// mpi4py two-sided message passing the upstream sampler uses.
package tempering

import "math"

// Ladder computes the K temperature rungs used by the PT coordinator
// (Betas converts them to inverse temperatures). With a single rank it
// degenerates to the cold chain only.
// Otherwise rungs are spaced geometrically between Tmin and Tmax; ndim
// feeds the same `1 + sqrt(2/ndim)` default step the upstream sampler
// falls back to when Tmax is not given.
func Ladder(ranks int, tmin, tmax float64, ndim int) []float64 {
	temps := make([]float64, ranks)
	if ranks == 1 {
		temps[0] = tmin
		return temps
	}

	if tmax > tmin {
		ratio := math.Exp(math.Log(tmax/tmin) / float64(ranks-1))
		for i := range temps {
			temps[i] = tmin * math.Pow(ratio, float64(i))
		}
		return temps
	}

	tstep := 1 + math.Sqrt(2.0/float64(ndim))
	temps[0] = tmin
	for i := 1; i < ranks; i++ {
		temps[i] = temps[i-1] * tstep
	}
	return temps
}

// Betas converts a temperature ladder to inverse temperatures (beta = 1/T).
func Betas(temps []float64) []float64 {
	betas := make([]float64, len(temps))
	for i, t := range temps {
		betas[i] = 1.0 / t
	}
	return betas
}
