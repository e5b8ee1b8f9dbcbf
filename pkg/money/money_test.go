package money

import (
	"math"
	"testing"
)

func TestRound2HalfUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want float64
	}{
		{12.345, 12.35},
		{12.344, 12.34},
		{0.005, 0.01},
		{-1.005, -1.01},
		{100, 100},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOrderTotalAvoidsFloatDrift(t *testing.T) {
	t.Parallel()

	// 0.1 * 3 accumulates binary float error when summed naively.
	lines := []Line{
		{Price: 0.1, Quantity: 1},
		{Price: 0.1, Quantity: 1},
		{Price: 0.1, Quantity: 1},
	}
	if got := OrderTotal(lines); got != 0.3 {
		t.Fatalf("OrderTotal = %v, want 0.3", got)
	}
}

func TestOrderTotalMixedLines(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Price: 19.99, Quantity: 3},
		{Price: 4.5, Quantity: 0.5},
		{Price: 0, Quantity: 10},
	}
	if got := OrderTotal(lines); got != 62.22 {
		t.Fatalf("OrderTotal = %v, want 62.22", got)
	}
}

func TestIsFinite(t *testing.T) {
	t.Parallel()

	if IsFinite(math.NaN()) {
		t.Fatal("NaN reported finite")
	}
	if IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Fatal("infinity reported finite")
	}
	if !IsFinite(0) || !IsFinite(-12.5) {
		t.Fatal("ordinary values reported non-finite")
	}
}
