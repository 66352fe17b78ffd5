package tempering

import (
	"github.com/jihwankim/ptmcmc/internal/kde"
	"gonum.org/v1/gonum/mat"
)

// CovMsg carries a refreshed covariance snapshot from rank 0 to a hot rank.
type CovMsg struct {
	Mean []float64
	Cov  *mat.SymDense
}

// DEMsg carries a refreshed differential-evolution buffer snapshot.
type DEMsg struct {
	Points [][]float64
}

// KDEMsg carries a freshly refit KDE.
type KDEMsg struct {
	Fit *kde.Gaussian
}

// broadcast holds, for a single rank, the most recent message of each
// kind not yet consumed. Rank 0 overwrites these every CovUpdate /
// KDEUpdate iterations; every rank drains them with a non-blocking
// select, mirroring the Iprobe-style non-blocking poll the rest of this
// package's transport uses.
type broadcast struct {
	cov chan CovMsg
	de  chan DEMsg
	kde chan KDEMsg
}

func newBroadcast() *broadcast {
	return &broadcast{
		cov: make(chan CovMsg, 1),
		de:  make(chan DEMsg, 1),
		kde: make(chan KDEMsg, 1),
	}
}

// sendLatest overwrites the pending message of that kind with msg, dropping any
// stale one still unread — hot ranks only ever need the latest snapshot.
func sendLatest[T any](ch chan T, msg T) {
	select {
	case <-ch:
	default:
	}
	ch <- msg
}

// pollCov returns the latest pending covariance snapshot, if any.
func (b *broadcast) pollCov() (CovMsg, bool) {
	select {
	case m := <-b.cov:
		return m, true
	default:
		return CovMsg{}, false
	}
}

func (b *broadcast) pollDE() (DEMsg, bool) {
	select {
	case m := <-b.de:
		return m, true
	default:
		return DEMsg{}, false
	}
}

func (b *broadcast) pollKDE() (KDEMsg, bool) {
	select {
	case m := <-b.kde:
		return m, true
	default:
		return KDEMsg{}, false
	}
}
