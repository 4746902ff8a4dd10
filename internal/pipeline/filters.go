package pipeline

import (
	"strings"
	"time"

	"pburn/internal/model"
)

// FilterByProject returns series whose id or name matches the substring,
// case-insensitive.
func FilterByProject(all []model.ProjectSeries, query string) []model.ProjectSeries {
	if query == "" {
		return all
	}
	var result []model.ProjectSeries
	for _, s := range all {
		if containsIgnoreCase(s.ProjectID, query) || containsIgnoreCase(s.ProjectName, query) {
			result = append(result, s)
		}
	}
	return result
}

// FilterByDate trims each series to points within [since, until). Series left
// without points are dropped so callers can summarize the remainder without
// tripping the empty-series error.
func FilterByDate(all []model.ProjectSeries, since, until time.Time) []model.ProjectSeries {
	if since.IsZero() && until.IsZero() {
		return all
	}

	var result []model.ProjectSeries
	for _, s := range all {
		var kept []model.SpendPoint
		for _, p := range s.Points {
			if !since.IsZero() && p.Date.Before(since) {
				continue
			}
			if !until.IsZero() && !p.Date.Before(until) {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			continue
		}
		trimmed := s
		trimmed.Points = kept
		result = append(result, trimmed)
	}
	return result
}

// FindProject returns the series with the exact project id, or false.
func FindProject(all []model.ProjectSeries, id string) (model.ProjectSeries, bool) {
	for _, s := range all {
		if s.ProjectID == id {
			return s, true
		}
	}
	return model.ProjectSeries{}, false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
