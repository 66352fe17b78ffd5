package ess

import (
	"math"
	"testing"
)

func TestIntegratedAutocorrTimeOfWhiteNoiseIsSmall(t *testing.T) {
	n := 4096
	x := make([]float64, n)
	// A fixed low-discrepancy sequence in place of i.i.d. noise, so the
	// test has no dependency on math/rand seeding: consecutive values are
	// as decorrelated as a deterministic sequence can manage.
	state := uint64(88172645463325252)
	for i := range x {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		x[i] = float64(state%2000)/1000.0 - 1.0
	}

	tau := IntegratedAutocorrTime(x)
	if math.IsNaN(tau) {
		t.Fatal("IntegratedAutocorrTime returned NaN for a long, low-autocorrelation series")
	}
	if tau < 0.5 || tau > 50 {
		t.Errorf("tau = %v, want a small integrated autocorrelation time for a near-white series", tau)
	}
}

func TestIntegratedAutocorrTimeOfConstantSeriesIsNaN(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 5.0
	}
	tau := IntegratedAutocorrTime(x)
	if !math.IsNaN(tau) {
		t.Errorf("tau = %v, want NaN for a zero-variance (constant) series", tau)
	}
}

func TestIntegratedAutocorrTimeTooShortIsNaN(t *testing.T) {
	tau := IntegratedAutocorrTime([]float64{1, 2, 3})
	if !math.IsNaN(tau) {
		t.Errorf("tau = %v, want NaN for a series shorter than the minimum window", tau)
	}
}

func TestMonitorEffectiveSampleSizeNeedsWindow(t *testing.T) {
	m := NewMonitor(2, 200)
	for i := 0; i < 5; i++ {
		m.Observe([]float64{float64(i), float64(-i)})
	}
	neff, _ := m.EffectiveSampleSize(5)
	if neff != 0 {
		t.Errorf("EffectiveSampleSize with too few observations = %v, want 0", neff)
	}
}

func TestMonitorEffectiveSampleSizePositiveWithEnoughHistory(t *testing.T) {
	m := NewMonitor(1, 2000)
	state := uint64(12345)
	for i := 0; i < 1000; i++ {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		m.Observe([]float64{float64(state%2000)/1000.0 - 1.0})
	}
	neff, taus := m.EffectiveSampleSize(1000)
	if neff <= 0 {
		t.Errorf("EffectiveSampleSize = %v, want > 0 given a long near-white history", neff)
	}
	if len(taus) != 1 {
		t.Fatalf("len(taus) = %d, want 1", len(taus))
	}
}
