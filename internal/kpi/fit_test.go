package kpi

import (
	"math"
	"testing"
)

func TestLinearFit_ExactLine(t *testing.T) {
	xs := []float64{0, 10, 20}
	ys := []float64{0, 400, 800}

	slope, intercept, ok := linearFit(xs, ys)
	if !ok {
		t.Fatal("fit failed on clean input")
	}
	if math.Abs(slope-40) > 1e-9 {
		t.Errorf("slope = %v, want 40", slope)
	}
	if math.Abs(intercept) > 1e-9 {
		t.Errorf("intercept = %v, want 0", intercept)
	}
}

func TestLinearFit_NoisyPoints(t *testing.T) {
	// Symmetric noise around y = 2x + 1 cancels out.
	xs := []float64{0, 1, 2, 3}
	ys := []float64{1.5, 2.5, 5.5, 6.5}

	slope, intercept, ok := linearFit(xs, ys)
	if !ok {
		t.Fatal("fit failed")
	}
	if math.Abs(slope-1.8) > 1e-9 {
		t.Errorf("slope = %v, want 1.8", slope)
	}
	if math.Abs(intercept-1.3) > 1e-9 {
		t.Errorf("intercept = %v, want 1.3", intercept)
	}
}

func TestLinearFit_Degenerate(t *testing.T) {
	cases := []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{"single point", []float64{5}, []float64{10}},
		{"empty", nil, nil},
		{"mismatched lengths", []float64{1, 2}, []float64{1}},
		{"identical x", []float64{10, 10, 10}, []float64{1, 2, 3}},
		{"non-finite x", []float64{0, math.Inf(1)}, []float64{1, 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := linearFit(tc.xs, tc.ys); ok {
				t.Error("expected fit to report !ok")
			}
		})
	}
}
