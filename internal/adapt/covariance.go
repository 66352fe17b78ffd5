// Package adapt implements the recursive covariance estimator, the
// differential-evolution sample buffer, and the KDE refit trigger that
// back the SCAM/AM/DE/KDE proposal kernels.
package adapt

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Covariance maintains a running mean and covariance over sampled points
// (Welford's recursive update) and periodically refreshes an eigenbasis
// (via SVD) used by the SCAM kernel. All mutation happens on rank 0; hot
// ranks hold a read-only snapshot refreshed by broadcast.
type Covariance struct {
	mu sync.RWMutex

	dim   int
	n     int64
	mean  []float64
	cov   *mat.SymDense // running sample covariance
	scale float64       // c^2 = 2.4^2/dim, fixed at construction

	// eigenbasis, refreshed on Refresh()
	u  *mat.Dense // columns are eigenvectors
	s  []float64  // singular values (eigenvalues of a symmetric PSD cov)
	ok bool
}

// NewCovariance creates a Covariance for dim-dimensional points, seeded
// with an initial diagonal estimate (scale 1 in every direction).
func NewCovariance(dim int) *Covariance {
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, 1.0)
	}
	return &Covariance{
		dim:   dim,
		mean:  make([]float64, dim),
		cov:   cov,
		scale: 2.4 * 2.4 / float64(dim),
	}
}

// Update folds x into the running mean/covariance using the standard
// recursive (Welford-style) one-pass update:
//
//	mean_n = mean_{n-1} + (x - mean_{n-1})/n
//	cov_n  = cov_{n-1} + [(x-mean_{n-1})(x-mean_n)^T - cov_{n-1}] / n
func (c *Covariance) Update(x []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.n++
	n := float64(c.n)
	delta := make([]float64, c.dim)
	for i := range x {
		delta[i] = x[i] - c.mean[i]
		c.mean[i] += delta[i] / n
	}
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			d2 := x[j] - c.mean[j]
			v := c.cov.At(i, j) + (delta[i]*d2-c.cov.At(i, j))/n
			c.cov.SetSym(i, j, v)
		}
	}
}

// N returns the number of points folded into the estimator.
func (c *Covariance) N() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.n
}

// Snapshot returns a copy of the current mean and covariance, safe to hand
// to a hot rank after a broadcast.
func (c *Covariance) Snapshot() (mean []float64, cov *mat.SymDense) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mean = make([]float64, c.dim)
	copy(mean, c.mean)
	cov = mat.NewSymDense(c.dim, nil)
	cov.CopySym(c.cov)
	return mean, cov
}

// LoadSnapshot installs mean/cov as supplied by a broadcast from rank 0,
// used on hot ranks instead of Update.
func (c *Covariance) LoadSnapshot(mean []float64, cov *mat.SymDense) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mean, mean)
	c.cov.CopySym(cov)
}

// Refresh recomputes the SVD-based eigenbasis used for SCAM proposals:
// cov = U * diag(S) * U^T. Call periodically (every CovUpdate iterations),
// never on every step — the SVD is the expensive part of adaptation.
func (c *Covariance) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var svd mat.SVD
	ok := svd.Factorize(c.cov)
	if !ok {
		c.ok = false
		return
	}
	c.s = svd.Values(nil)
	u := &mat.Dense{}
	svd.UTo(u)
	c.u = u
	c.ok = true
}

// Eigenbasis returns the last-refreshed eigenvectors and eigenvalues. ok is
// false if Refresh has never succeeded, in which case callers fall back to
// an identity basis.
func (c *Covariance) Eigenbasis() (u *mat.Dense, s []float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.u, c.s, c.ok
}

// Dim returns the dimensionality of the estimator.
func (c *Covariance) Dim() int { return c.dim }
