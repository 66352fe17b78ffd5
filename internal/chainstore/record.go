// Package chainstore persists thinned chain samples to the tab-separated
// per-temperature files the sampler writes, plus periodic covariance
// snapshots, and supports resuming a run from those files.
package chainstore

// Record is one thinned row written to a chain file: the tempered
// log-posterior, the raw log-likelihood, the running local and swap
// acceptance rates at the time of writing, and the sampled point.
type Record struct {
	LogPost        float64
	LogL           float64
	AcceptRate     float64
	SwapAcceptRate float64
	X              []float64
}
