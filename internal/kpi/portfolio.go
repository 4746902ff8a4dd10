package kpi

import (
	"sort"

	"pburn/internal/model"
)

// Summarize runs the KPI engine once per series and assembles the portfolio
// ranking, sorted descending by risk score. The sort is stable: ties keep the
// input encounter order. An empty series fails the whole summary; there is no
// partial mode here, callers pre-filter if they want best-effort results.
func Summarize(all []model.ProjectSeries) (model.PortfolioSummary, error) {
	rows := make(model.PortfolioSummary, 0, len(all))

	for _, series := range all {
		k, err := Compute(series)
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.PortfolioRow{
			ProjectID:          series.ProjectID,
			ProjectName:        series.ProjectName,
			Budget:             k.Budget,
			LatestSpend:        k.LatestSpend,
			PctExecution:       k.PctExecution,
			VariancePct:        k.VariancePct,
			ForecastToComplete: k.ForecastToComplete,
			RiskScore:          k.RiskScore,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RiskScore > rows[j].RiskScore
	})

	return rows, nil
}
