// Package model defines domain types for pburn project series and KPIs.
package model

import "time"

// SpendPoint is one dated cumulative-spend observation.
type SpendPoint struct {
	Date            time.Time
	CumulativeSpend float64
}

// Milestone is a named project checkpoint with its planned date.
type Milestone struct {
	Name string
	Date time.Time
}

// ProjectSeries holds one project's static fields and its ordered spend series.
// Points are ascending by date by loader convention; the KPI engine does not
// rely on that and picks the latest point explicitly.
type ProjectSeries struct {
	ProjectID   string
	ProjectName string
	Budget      float64
	StartDate   time.Time
	EndDate     time.Time
	Points      []SpendPoint
	Milestones  []Milestone
	SourceFile  string
}

// LatestPoint returns the point with the maximum date and true, or false for
// an empty series. On equal dates the later entry wins, matching the
// convention that later rows supersede earlier ones.
func (s ProjectSeries) LatestPoint() (SpendPoint, bool) {
	if len(s.Points) == 0 {
		return SpendPoint{}, false
	}
	latest := s.Points[0]
	for _, p := range s.Points[1:] {
		if !p.Date.Before(latest.Date) {
			latest = p
		}
	}
	return latest, true
}
