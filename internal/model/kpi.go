package model

import "time"

// KPIRecord is an immutable KPI snapshot for one project at evaluation time.
// It is recomputed from a ProjectSeries on every request and never persisted.
type KPIRecord struct {
	Budget             float64
	LatestSpend        float64
	PctExecution       float64 // latest spend / budget, 0 when budget is 0
	VariancePct        float64 // (latest spend - budget) / budget, 0 when budget is 0
	BurnRate           float64 // spend per elapsed calendar day
	DaysElapsed        int     // clamped to >= 1
	DaysTotal          int     // clamped to >= 1
	ForecastToComplete float64 // projected spend at the planned end date
	RiskScore          float64 // clamped to [-1000, 1000]
	LatestDate         time.Time
}

// RiskAssessment is the classifier verdict for one KPI record. Reasons keep a
// fixed evaluation order so output is deterministic.
type RiskAssessment struct {
	IsRisky bool
	Reasons []string
}

// PortfolioRow is one project's summary line in the cross-project ranking.
type PortfolioRow struct {
	ProjectID          string
	ProjectName        string
	Budget             float64
	LatestSpend        float64
	PctExecution       float64
	VariancePct        float64
	ForecastToComplete float64
	RiskScore          float64
}

// PortfolioSummary is the portfolio table sorted descending by risk score.
// Ties preserve input encounter order.
type PortfolioSummary []PortfolioRow
