package adapt_test

import (
	"math/rand"
	"testing"

	"github.com/jihwankim/ptmcmc/internal/adapt"
)

func TestDEBufferSampleRequiresTwoPoints(t *testing.T) {
	buf := adapt.NewDEBuffer(10)
	if _, _, ok := buf.Sample(rand.New(rand.NewSource(1)).Intn); ok {
		t.Fatal("Sample should fail on an empty buffer")
	}
	buf.Append([]float64{1, 2})
	if _, _, ok := buf.Sample(rand.New(rand.NewSource(1)).Intn); ok {
		t.Fatal("Sample should fail with only one stored point")
	}
	buf.Append([]float64{3, 4})
	a, b, ok := buf.Sample(rand.New(rand.NewSource(1)).Intn)
	if !ok {
		t.Fatal("Sample should succeed with two stored points")
	}
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("Sample returned points of length %d/%d, want 2/2", len(a), len(b))
	}
}

func TestDEBufferWrapsAtCapacity(t *testing.T) {
	buf := adapt.NewDEBuffer(3)
	for i := 0; i < 10; i++ {
		buf.Append([]float64{float64(i)})
	}
	if buf.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (capped at capacity)", buf.Len())
	}
	snap := buf.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(Snapshot()) = %d, want 3", len(snap))
	}
}

func TestDEBufferLoadSnapshotTruncatesToCapacity(t *testing.T) {
	buf := adapt.NewDEBuffer(2)
	pts := [][]float64{{1}, {2}, {3}, {4}}
	buf.LoadSnapshot(pts)
	if buf.Len() != 2 {
		t.Fatalf("Len() after LoadSnapshot = %d, want 2 (capacity)", buf.Len())
	}
}
