// Package kpi computes project financial KPIs, risk classification, and
// portfolio summaries. All functions are pure: no I/O, no logging, safe for
// concurrent use on disjoint inputs.
package kpi

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pburn/internal/model"
)

// ErrEmptySeries is returned when KPI computation is attempted on a project
// with zero spend points. Callers that want partial portfolio results must
// pre-filter empty series themselves.
var ErrEmptySeries = errors.New("project series has no data points")

// riskScoreBound caps the risk score magnitude so one pathological project
// cannot dwarf the rest of the ranking.
const riskScoreBound = 1000.0

// Risk score blend weights: variance dominates, forecast overload contributes.
const (
	varianceWeight = 0.6
	overloadWeight = 0.4
)

// Compute derives the KPI snapshot for one project series.
// Degenerate inputs degrade instead of failing: zero budget yields zero
// execution/variance, non-positive date spans clamp to one day, and a failed
// forecast fit falls back to rate extrapolation. The only error condition is
// an empty series.
func Compute(series model.ProjectSeries) (model.KPIRecord, error) {
	latest, ok := series.LatestPoint()
	if !ok {
		return model.KPIRecord{}, fmt.Errorf("project %s: %w", series.ProjectID, ErrEmptySeries)
	}

	budget := series.Budget
	daysTotal := clampDays(daysBetween(series.StartDate, series.EndDate))
	daysElapsed := clampDays(daysBetween(series.StartDate, latest.Date))

	k := model.KPIRecord{
		Budget:      budget,
		LatestSpend: latest.CumulativeSpend,
		DaysElapsed: daysElapsed,
		DaysTotal:   daysTotal,
		LatestDate:  latest.Date,
	}

	if budget != 0 {
		k.PctExecution = latest.CumulativeSpend / budget
		k.VariancePct = (latest.CumulativeSpend - budget) / budget
	}

	k.BurnRate = latest.CumulativeSpend / float64(daysElapsed)
	k.ForecastToComplete = forecast(series, latest, daysTotal, daysElapsed)

	var overload float64
	if budget != 0 {
		overload = (k.ForecastToComplete - budget) / budget
	}

	score := 100 * (varianceWeight*k.VariancePct + overloadWeight*overload)
	k.RiskScore = clampScore(score)

	return k, nil
}

// forecast projects cumulative spend at the planned end date. The primary
// path fits a least-squares line over all points; anything that makes the fit
// unusable falls back to extrapolating the elapsed spend rate. The fallback
// always yields a finite number.
func forecast(series model.ProjectSeries, latest model.SpendPoint, daysTotal, daysElapsed int) float64 {
	xs := make([]float64, 0, len(series.Points))
	ys := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		x := float64(daysBetween(series.StartDate, p.Date))
		if !isFinite(x) || !isFinite(p.CumulativeSpend) {
			xs = nil
			break
		}
		xs = append(xs, x)
		ys = append(ys, p.CumulativeSpend)
	}

	if len(xs) >= 2 {
		if slope, intercept, ok := linearFit(xs, ys); ok {
			if f := slope*float64(daysTotal) + intercept; isFinite(f) {
				return f
			}
		}
	}

	return latest.CumulativeSpend * (float64(daysTotal) / float64(daysElapsed))
}

// daysBetween returns whole calendar days from a to b, negative when b
// precedes a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func clampDays(d int) int {
	if d < 1 {
		return 1
	}
	return d
}

func clampScore(s float64) float64 {
	switch {
	case s > riskScoreBound:
		return riskScoreBound
	case s < -riskScoreBound:
		return -riskScoreBound
	default:
		return s
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
