// Package kde implements a Gaussian kernel density estimate over a set of
// stored chain samples. No package in the retrieved corpus ships a ready
// Gaussian KDE (gonum has multivariate normal sampling and Cholesky, but no
// density estimator), so this is a small hand-written estimator built
// directly on gonum's linear algebra and multivariate-normal primitives.
package kde

import (
	"math"
	"math/rand"

	"github.com/jihwankim/ptmcmc/internal/randutil"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is a Gaussian KDE fit to a point cloud: a mixture of one
// normal per data point, all sharing the bandwidth covariance H.
type Gaussian struct {
	points    [][]float64
	bandwidth *mat.SymDense
	normal    *distmv.Normal // zero-mean kernel shared by every mixture component
	dim       int
}

// Fit builds a Gaussian KDE over points using Scott's rule for the
// bandwidth: H = n^(-2/(d+4)) * Sigma_sample (the Scott factor
// n^(-1/(d+4)), squared), where Sigma_sample is the sample covariance of
// points.
func Fit(points [][]float64, rng *rand.Rand) (*Gaussian, bool) {
	n := len(points)
	if n == 0 {
		return nil, false
	}
	dim := len(points[0])

	mean := make([]float64, dim)
	for _, p := range points {
		for i, v := range p {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(n)
	}

	sample := mat.NewSymDense(dim, nil)
	for _, p := range points {
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				d := sample.At(i, j) + (p[i]-mean[i])*(p[j]-mean[j])
				sample.SetSym(i, j, d)
			}
		}
	}
	denom := float64(n)
	if denom > 1 {
		denom = denom - 1
	}
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			sample.SetSym(i, j, sample.At(i, j)/denom)
		}
	}

	factor := math.Pow(float64(n), -1.0/(float64(dim)+4.0))
	bw := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			bw.SetSym(i, j, factor*factor*sample.At(i, j))
		}
	}
	// Nudge the diagonal if the scaled sample covariance is degenerate
	// (e.g. fewer points than dimensions).
	for i := 0; i < dim; i++ {
		if bw.At(i, i) <= 0 {
			bw.SetSym(i, i, 1e-6)
		}
	}

	zero := make([]float64, dim)
	normal, ok := distmv.NewNormal(zero, bw, randutil.V2Source{R: rng})
	if !ok {
		return nil, false
	}

	pts := make([][]float64, n)
	for i, p := range points {
		cp := make([]float64, dim)
		copy(cp, p)
		pts[i] = cp
	}

	return &Gaussian{points: pts, bandwidth: bw, normal: normal, dim: dim}, true
}

// Sample draws one point from the KDE: pick a data point uniformly, then
// jitter it by the shared kernel bandwidth.
func (g *Gaussian) Sample(rng *rand.Rand) []float64 {
	i := rng.Intn(len(g.points))
	jitter := g.normal.Rand(nil)
	out := make([]float64, g.dim)
	for d := 0; d < g.dim; d++ {
		out[d] = g.points[i][d] + jitter[d]
	}
	return out
}

// LogProb evaluates the KDE log-density at x: log of the mean over
// components of the per-component Gaussian density.
func (g *Gaussian) LogProb(x []float64) float64 {
	n := len(g.points)
	if n == 0 {
		return math.Inf(-1)
	}
	// log-sum-exp over components.
	logs := make([]float64, n)
	maxLog := math.Inf(-1)
	diff := make([]float64, g.dim)
	for i, p := range g.points {
		for d := 0; d < g.dim; d++ {
			diff[d] = x[d] - p[d]
		}
		lp := g.normal.LogProb(diff)
		logs[i] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}
	if math.IsInf(maxLog, -1) {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, lp := range logs {
		sum += math.Exp(lp - maxLog)
	}
	return maxLog + math.Log(sum) - math.Log(float64(n))
}

// Len returns the number of points backing the estimate.
func (g *Gaussian) Len() int { return len(g.points) }
