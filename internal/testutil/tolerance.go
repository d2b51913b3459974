package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireBlockNearlyEqual fails t if the blocks differ in shape or if any
// channel differs by more than eps.
func RequireBlockNearlyEqual(t testing.TB, got, want *buffer.Block, eps float64) {
	t.Helper()
	if got.Channels() != want.Channels() || got.Frames() != want.Frames() {
		t.Fatalf("shape mismatch: got %dx%d, want %dx%d",
			got.Channels(), got.Frames(), want.Channels(), want.Frames())
	}
	for c := range got.Channels() {
		d, err := MaxAbsDiff(got.Channel(c), want.Channel(c))
		if err != nil {
			t.Fatal(err)
		}
		if d > eps {
			t.Fatalf("channel %d: max diff %v > eps %v", c, d, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		maxDiff = math.Max(maxDiff, math.Abs(a[i]-b[i]))
	}
	return maxDiff, nil
}
