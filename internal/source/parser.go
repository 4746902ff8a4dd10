package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"pburn/internal/model"
)

// Expected header columns. Column order in the file is free; lookup goes
// through the header index.
const (
	colProjectID     = "project_id"
	colProjectName   = "project_name"
	colBudget        = "budget"
	colStartDate     = "start_date"
	colEndDate       = "end_date"
	colDate          = "date"
	colSpend         = "cumulative_spend"
	colMilestone     = "milestone"
	colMilestoneDate = "milestone_date"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// ParseFile reads a dated spend CSV and groups its rows into per-project
// series. Numeric fields coerce: a malformed budget reads as zero and a
// malformed spend drops that point, neither aborts the file. A row whose date
// column is unusable is dropped and counted in RowErrors. Points are sorted
// ascending by date per project; project encounter order is preserved.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("reading header of %s: %w", df.Path, err)}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colProjectID, colDate, colSpend} {
		if _, ok := idx[required]; !ok {
			return ParseResult{Err: fmt.Errorf("%s: missing required column %q", df.Path, required)}
		}
	}

	byID := make(map[string]*model.ProjectSeries)
	var order []string
	milestonesSeen := make(map[string]map[string]struct{})
	rowErrors := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors++
			continue
		}

		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id := field(colProjectID)
		if id == "" {
			rowErrors++
			continue
		}

		series, ok := byID[id]
		if !ok {
			series = &model.ProjectSeries{
				ProjectID:  id,
				SourceFile: df.Path,
			}
			byID[id] = series
			order = append(order, id)
			milestonesSeen[id] = make(map[string]struct{})
		}

		if series.ProjectName == "" {
			series.ProjectName = field(colProjectName)
		}
		if series.Budget == 0 {
			if b, ok := parseFloat(field(colBudget)); ok {
				series.Budget = b
			}
		}
		if start, ok := parseDate(field(colStartDate)); ok {
			if series.StartDate.IsZero() || start.Before(series.StartDate) {
				series.StartDate = start
			}
		}
		if end, ok := parseDate(field(colEndDate)); ok {
			if series.EndDate.IsZero() || end.After(series.EndDate) {
				series.EndDate = end
			}
		}

		date, ok := parseDate(field(colDate))
		if !ok {
			rowErrors++
			continue
		}

		if spend, ok := parseFloat(field(colSpend)); ok {
			series.Points = append(series.Points, model.SpendPoint{
				Date:            date,
				CumulativeSpend: spend,
			})
		}

		if name := field(colMilestone); name != "" {
			if msDate, ok := parseDate(field(colMilestoneDate)); ok {
				key := name + "\x00" + msDate.Format("2006-01-02")
				if _, dup := milestonesSeen[id][key]; !dup {
					milestonesSeen[id][key] = struct{}{}
					series.Milestones = append(series.Milestones, model.Milestone{
						Name: name,
						Date: msDate,
					})
				}
			}
		}
	}

	result := ParseResult{RowErrors: rowErrors}
	for _, id := range order {
		series := byID[id]
		sort.SliceStable(series.Points, func(i, j int) bool {
			return series.Points[i].Date.Before(series.Points[j].Date)
		})
		result.Series = append(result.Series, *series)
	}

	return result
}

// parseFloat coerces a numeric field, tolerating currency symbols and comma
// separators. Malformed values report !ok and become "missing" upstream.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
