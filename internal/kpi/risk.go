package kpi

import (
	"fmt"

	"pburn/internal/model"
)

// Default classifier thresholds: 10% absolute variance, risk score of 5.
const (
	DefaultVarianceThreshold = 0.10
	DefaultRiskThreshold     = 5.0
)

// FlagRisk classifies a KPI record against the two thresholds. The three
// conditions are independent and non-exclusive; they are evaluated in a fixed
// order so the reason list is deterministic. The forecast-over-budget check
// applies literally even when budget is zero.
func FlagRisk(k model.KPIRecord, varianceThreshold, riskThreshold float64) model.RiskAssessment {
	var reasons []string

	overVariance := abs(k.VariancePct) >= varianceThreshold
	overScore := abs(k.RiskScore) >= riskThreshold
	overBudget := k.ForecastToComplete > k.Budget

	if overVariance {
		reasons = append(reasons, fmt.Sprintf("current variance %.1f%% vs budget", k.VariancePct*100))
	}
	if overScore {
		reasons = append(reasons, fmt.Sprintf("estimated risk score %.1f", k.RiskScore))
	}
	if overBudget {
		reasons = append(reasons, "forecast indicates a likely budget overrun")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no relevant risk detected at current thresholds")
	}

	return model.RiskAssessment{
		IsRisky: overVariance || overScore || overBudget,
		Reasons: reasons,
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
