// Package targets supplies the handful of closed-form log-likelihood/
// log-prior pairs used by the CLI's built-in demo runs and by the
// package tests across the module — the same four end-to-end scenarios
// spec.md §8 names (1-D Gaussian, 5-D isotropic Gaussian, 2-D Rosenbrock,
// prior-rejection stress).
package targets

import (
	"fmt"
	"math"

	"github.com/jihwankim/ptmcmc/internal/proposal"
)

// Gaussian1D returns logL(x) = -x^2/2, logp = 0 (a standard normal
// posterior) and the zero-vector starting point, scenario 1.
func Gaussian1D() (proposal.Target, []float64) {
	t := proposal.Target{
		LogLikelihood: func(x []float64) float64 { return -0.5 * x[0] * x[0] },
		LogPrior:      func(x []float64) float64 { return 0 },
	}
	return t, []float64{0}
}

// GaussianND returns an isotropic n-dimensional standard normal
// posterior and the zero-vector starting point, scenario 2 (n=5).
func GaussianND(n int) (proposal.Target, []float64) {
	t := proposal.Target{
		LogLikelihood: func(x []float64) float64 {
			sum := 0.0
			for _, v := range x {
				sum += v * v
			}
			return -0.5 * sum
		},
		LogPrior: func(x []float64) float64 { return 0 },
	}
	return t, make([]float64, n)
}

// Rosenbrock2D returns the 2-D Rosenbrock "banana" log-likelihood,
// logL(x) = -[(1-x0)^2 + 100*(x1-x0^2)^2] / 20, logp = 0, and a starting
// point on the valley floor (x1 = x0^2) but far from the optimum (1,1),
// scenario 3.
func Rosenbrock2D() (proposal.Target, []float64) {
	t := proposal.Target{
		LogLikelihood: func(x []float64) float64 {
			a := 1 - x[0]
			b := x[1] - x[0]*x[0]
			return -(a*a + 100*b*b) / 20
		},
		LogPrior: func(x []float64) float64 { return 0 },
	}
	return t, []float64{-1, 1}
}

// PriorRejectionStress returns logp(x) = -inf outside the unit ball and
// 0 inside it, with a standard normal logL, scenario 4: every accepted
// (and hence every stored) sample must satisfy ||x|| <= 1.
func PriorRejectionStress() (proposal.Target, []float64) {
	t := proposal.Target{
		LogLikelihood: func(x []float64) float64 {
			sum := 0.0
			for _, v := range x {
				sum += v * v
			}
			return -0.5 * sum
		},
		LogPrior: func(x []float64) float64 {
			norm := 0.0
			for _, v := range x {
				norm += v * v
			}
			if math.Sqrt(norm) > 1 {
				return math.Inf(-1)
			}
			return 0
		},
	}
	return t, []float64{0, 0}
}

// Lookup resolves a demo target by name, for the CLI's --target flag.
func Lookup(name string) (proposal.Target, []float64, error) {
	switch name {
	case "gaussian1d":
		t, x := Gaussian1D()
		return t, x, nil
	case "gaussian5d":
		t, x := GaussianND(5)
		return t, x, nil
	case "rosenbrock2d":
		t, x := Rosenbrock2D()
		return t, x, nil
	case "priorstress":
		t, x := PriorRejectionStress()
		return t, x, nil
	default:
		return proposal.Target{}, nil, fmt.Errorf("unknown target %q (want one of gaussian1d, gaussian5d, rosenbrock2d, priorstress)", name)
	}
}
