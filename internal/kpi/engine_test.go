package kpi

import (
	"errors"
	"math"
	"testing"
	"time"

	"pburn/internal/model"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func seriesWith(budget float64, startDay, endDay int, points ...model.SpendPoint) model.ProjectSeries {
	return model.ProjectSeries{
		ProjectID:   "P-001",
		ProjectName: "Test Project",
		Budget:      budget,
		StartDate:   day(startDay),
		EndDate:     day(endDay),
		Points:      points,
	}
}

func pt(dayN int, spend float64) model.SpendPoint {
	return model.SpendPoint{Date: day(dayN), CumulativeSpend: spend}
}

func TestCompute_EndToEnd(t *testing.T) {
	// budget 1000, spend 0/400/800 on days 0/10/20, planned span 40 days.
	// Fit slope is 40/day with ~0 intercept, so forecast at day 40 is 1600.
	s := seriesWith(1000, 0, 40, pt(0, 0), pt(10, 400), pt(20, 800))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if k.DaysTotal != 40 {
		t.Errorf("DaysTotal = %d, want 40", k.DaysTotal)
	}
	if k.DaysElapsed != 20 {
		t.Errorf("DaysElapsed = %d, want 20", k.DaysElapsed)
	}
	if math.Abs(k.VariancePct-(-0.20)) > 1e-9 {
		t.Errorf("VariancePct = %v, want -0.20", k.VariancePct)
	}
	if math.Abs(k.PctExecution-0.80) > 1e-9 {
		t.Errorf("PctExecution = %v, want 0.80", k.PctExecution)
	}
	if math.Abs(k.BurnRate-40) > 1e-9 {
		t.Errorf("BurnRate = %v, want 40", k.BurnRate)
	}
	if math.Abs(k.ForecastToComplete-1600) > 1e-6 {
		t.Errorf("ForecastToComplete = %v, want 1600", k.ForecastToComplete)
	}
	// 100 * (0.6*-0.20 + 0.4*0.60) = 12.0
	if math.Abs(k.RiskScore-12.0) > 1e-6 {
		t.Errorf("RiskScore = %v, want 12.0", k.RiskScore)
	}
	if !k.LatestDate.Equal(day(20)) {
		t.Errorf("LatestDate = %v, want %v", k.LatestDate, day(20))
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	_, err := Compute(seriesWith(1000, 0, 40))
	if err == nil {
		t.Fatal("expected error for empty series, got nil")
	}
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("error = %v, want ErrEmptySeries", err)
	}
}

func TestCompute_ZeroBudgetDegrades(t *testing.T) {
	s := seriesWith(0, 0, 40, pt(0, 0), pt(10, 400), pt(20, 800))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if k.PctExecution != 0 {
		t.Errorf("PctExecution = %v, want 0 for zero budget", k.PctExecution)
	}
	if k.VariancePct != 0 {
		t.Errorf("VariancePct = %v, want 0 for zero budget", k.VariancePct)
	}
	// Overload is also zero-guarded, so the blended score collapses to 0.
	if k.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0 for zero budget", k.RiskScore)
	}
	if k.BurnRate != 40 {
		t.Errorf("BurnRate = %v, want 40 (unaffected by budget)", k.BurnRate)
	}
}

func TestCompute_DayClamps(t *testing.T) {
	cases := []struct {
		name             string
		startDay, endDay int
		pointDay         int
	}{
		{"reversed dates", 40, 0, 0},
		{"identical dates", 10, 10, 10},
		{"point before start", 10, 40, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seriesWith(1000, tc.startDay, tc.endDay, pt(tc.pointDay, 500))
			k, err := Compute(s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if k.DaysTotal < 1 {
				t.Errorf("DaysTotal = %d, want >= 1", k.DaysTotal)
			}
			if k.DaysElapsed < 1 {
				t.Errorf("DaysElapsed = %d, want >= 1", k.DaysElapsed)
			}
			if !isFinite(k.BurnRate) || !isFinite(k.ForecastToComplete) {
				t.Errorf("non-finite outputs: burn %v forecast %v", k.BurnRate, k.ForecastToComplete)
			}
		})
	}
}

func TestCompute_PicksMaxDateFromUnsortedPoints(t *testing.T) {
	s := seriesWith(1000, 0, 40, pt(20, 800), pt(0, 0), pt(10, 400))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.LatestSpend != 800 {
		t.Errorf("LatestSpend = %v, want 800 (max date, not last element)", k.LatestSpend)
	}
	if k.DaysElapsed != 20 {
		t.Errorf("DaysElapsed = %d, want 20", k.DaysElapsed)
	}
}

func TestCompute_RiskScoreClamped(t *testing.T) {
	// Tiny budget, huge spend: raw score far beyond the bound.
	over := seriesWith(1, 0, 40, pt(0, 0), pt(20, 1_000_000))
	k, err := Compute(over)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.RiskScore != 1000 {
		t.Errorf("RiskScore = %v, want clamp at 1000", k.RiskScore)
	}

	// Mirror case: negative spend drives the score below the lower bound.
	under := seriesWith(1, 0, 40, pt(0, 0), pt(20, -1_000_000))
	k, err = Compute(under)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.RiskScore != -1000 {
		t.Errorf("RiskScore = %v, want clamp at -1000", k.RiskScore)
	}
}

func TestForecast_FallbackSinglePoint(t *testing.T) {
	s := seriesWith(1000, 0, 40, pt(10, 400))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 400 * (40/10) = 1600 via rate extrapolation.
	if math.Abs(k.ForecastToComplete-1600) > 1e-9 {
		t.Errorf("ForecastToComplete = %v, want 1600 (fallback)", k.ForecastToComplete)
	}
}

func TestForecast_FallbackDuplicateDates(t *testing.T) {
	// Two points on the same day make the fit singular.
	s := seriesWith(1000, 0, 40, pt(10, 300), pt(10, 400))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isFinite(k.ForecastToComplete) {
		t.Fatalf("ForecastToComplete = %v, want finite fallback", k.ForecastToComplete)
	}
	if math.Abs(k.ForecastToComplete-1600) > 1e-9 {
		t.Errorf("ForecastToComplete = %v, want 1600 (fallback)", k.ForecastToComplete)
	}
}

func TestForecast_FallbackNonFiniteSpend(t *testing.T) {
	s := seriesWith(1000, 0, 40, pt(0, 0), pt(10, math.NaN()), pt(20, 800))

	k, err := Compute(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isFinite(k.ForecastToComplete) {
		t.Errorf("ForecastToComplete = %v, want finite", k.ForecastToComplete)
	}
}
