package adapt_test

import (
	"math"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/adapt"
)

func TestCovarianceUpdateConvergesToKnownVariance(t *testing.T) {
	cov := adapt.NewCovariance(2)

	// Deterministic grid of points with known population covariance:
	// x in {-1, 1}, y in {-1, 1} independently, each combination once.
	pts := [][]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	for i := 0; i < 200; i++ {
		cov.Update(pts[i%len(pts)])
	}

	if cov.N() != 200 {
		t.Fatalf("N() = %d, want 200", cov.N())
	}

	_, sigma := cov.Snapshot()
	if math.Abs(sigma.At(0, 0)-1.0) > 1e-9 {
		t.Errorf("Sigma[0][0] = %v, want ~1.0", sigma.At(0, 0))
	}
	if math.Abs(sigma.At(1, 1)-1.0) > 1e-9 {
		t.Errorf("Sigma[1][1] = %v, want ~1.0", sigma.At(1, 1))
	}
	if math.Abs(sigma.At(0, 1)) > 1e-9 {
		t.Errorf("Sigma[0][1] = %v, want ~0 (independent axes)", sigma.At(0, 1))
	}
}

// TestCovarianceSymmetricPSD checks the invariant that Sigma stays
// symmetric and PSD after a stream of updates, and that U*diag(S)*U^T
// reconstructs Sigma to within 1e-6 relative error after Refresh.
func TestCovarianceSymmetricPSD(t *testing.T) {
	cov := adapt.NewCovariance(3)

	src := []float64{0.1, -0.2, 0.05, 0.3, 0.2, -0.1}
	for i := 0; i < 500; i++ {
		x := []float64{
			float64(i%7) * src[i%len(src)],
			float64((i+1)%5) * src[(i+1)%len(src)],
			float64((i+2)%3) * src[(i+2)%len(src)],
		}
		cov.Update(x)
	}

	_, sigma := cov.Snapshot()
	dim := 3
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if math.Abs(sigma.At(i, j)-sigma.At(j, i)) > 1e-12 {
				t.Fatalf("Sigma not symmetric at (%d,%d): %v vs %v", i, j, sigma.At(i, j), sigma.At(j, i))
			}
		}
	}

	cov.Refresh()
	u, s, ok := cov.Eigenbasis()
	if !ok {
		t.Fatal("Refresh did not produce a usable eigenbasis")
	}
	for _, v := range s {
		if v < -1e-9 {
			t.Errorf("eigenvalue %v is negative, Sigma should be PSD", v)
		}
	}

	// Reconstruct U*diag(S)*U^T and compare to Sigma entrywise.
	rows, cols := u.Dims()
	if rows != dim || cols != dim {
		t.Fatalf("unexpected eigenbasis shape %dx%d, want %dx%d", rows, cols, dim, dim)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			var recon float64
			for k := 0; k < len(s); k++ {
				recon += u.At(i, k) * s[k] * u.At(j, k)
			}
			want := sigma.At(i, j)
			denom := math.Max(math.Abs(want), 1e-12)
			if math.Abs(recon-want)/denom > 1e-6 {
				t.Errorf("reconstruction mismatch at (%d,%d): got %v, want %v", i, j, recon, want)
			}
		}
	}
}

func TestCovarianceLoadSnapshotRoundTrips(t *testing.T) {
	a := adapt.NewCovariance(2)
	a.Update([]float64{1, 2})
	a.Update([]float64{3, 4})

	mean, sigma := a.Snapshot()

	b := adapt.NewCovariance(2)
	b.LoadSnapshot(mean, sigma)

	bMean, bSigma := b.Snapshot()
	for i := range mean {
		if bMean[i] != mean[i] {
			t.Errorf("mean[%d] = %v, want %v", i, bMean[i], mean[i])
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if bSigma.At(i, j) != sigma.At(i, j) {
				t.Errorf("cov[%d][%d] = %v, want %v", i, j, bSigma.At(i, j), sigma.At(i, j))
			}
		}
	}
}
