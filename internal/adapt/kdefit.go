package adapt

import (
	"math/rand"
	"sync"

	"github.com/jihwankim/ptmcmc/internal/kde"
)

// KDERefitter owns the point history a KDE proposal is periodically refit
// against and hands out fresh fits on request. Only rank 0 calls Refit;
// hot ranks receive the resulting *kde.Gaussian via broadcast.
type KDERefitter struct {
	mu     sync.Mutex
	window int
	points [][]float64
}

// NewKDERefitter creates a refitter that keeps the most recent window
// points for fitting.
func NewKDERefitter(window int) *KDERefitter {
	return &KDERefitter{window: window}
}

// Observe appends a sampled point to the refit history, evicting the
// oldest point once the window is full.
func (r *KDERefitter) Observe(x []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]float64, len(x))
	copy(cp, x)
	r.points = append(r.points, cp)
	if len(r.points) > r.window {
		r.points = r.points[len(r.points)-r.window:]
	}
}

// Refit fits a new Gaussian KDE over the current history. It returns
// ok=false if there is not yet enough history to fit.
func (r *KDERefitter) Refit(rng *rand.Rand) (*kde.Gaussian, bool) {
	r.mu.Lock()
	pts := make([][]float64, len(r.points))
	copy(pts, r.points)
	r.mu.Unlock()

	if len(pts) < 2 {
		return nil, false
	}
	return kde.Fit(pts, rng)
}
