package pipeline

import (
	"pburn/internal/kpi"
	"pburn/internal/model"
)

// PortfolioSnapshot bundles the ranked summary with per-row assessments and
// portfolio totals. It is what the CLI, TUI, and daemon all render from.
type PortfolioSnapshot struct {
	Rows          model.PortfolioSummary
	Assessments   []model.RiskAssessment // index-aligned with Rows
	RiskyCount    int
	TotalBudget   float64
	TotalSpend    float64
	TotalForecast float64
}

// Snapshot summarizes the portfolio and classifies every row against the
// thresholds. Any empty series fails the whole snapshot, matching Summarize.
func Snapshot(all []model.ProjectSeries, varianceThreshold, riskThreshold float64) (PortfolioSnapshot, error) {
	rows, err := kpi.Summarize(all)
	if err != nil {
		return PortfolioSnapshot{}, err
	}

	snap := PortfolioSnapshot{Rows: rows}
	snap.Assessments = make([]model.RiskAssessment, len(rows))

	for i, row := range rows {
		k := model.KPIRecord{
			Budget:             row.Budget,
			LatestSpend:        row.LatestSpend,
			PctExecution:       row.PctExecution,
			VariancePct:        row.VariancePct,
			ForecastToComplete: row.ForecastToComplete,
			RiskScore:          row.RiskScore,
		}
		a := kpi.FlagRisk(k, varianceThreshold, riskThreshold)
		snap.Assessments[i] = a
		if a.IsRisky {
			snap.RiskyCount++
		}

		snap.TotalBudget += row.Budget
		snap.TotalSpend += row.LatestSpend
		snap.TotalForecast += row.ForecastToComplete
	}

	return snap, nil
}
