// Package pipeline orchestrates CSV loading, caching, and portfolio evaluation.
package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"pburn/internal/model"
	"pburn/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Series       []model.ProjectSeries
	TotalFiles   int
	ParsedFiles  int
	RowErrors    int
	FileErrors   int
	ProjectCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses all spend CSV files from the data directory.
// It uses a bounded worker pool for parallel parsing and merges series that
// share a project id across files, preserving first-encounter order.
func Load(dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, progressFn)

	var parsed [][]model.ProjectSeries
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.RowErrors += pr.RowErrors
		parsed = append(parsed, pr.Series)
	}

	result.Series = MergeSeries(parsed)
	result.ProjectCount = len(result.Series)
	return result, nil
}

// parseAll runs ParseFile over the files with a bounded worker pool,
// preserving input order in the result slice.
func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// MergeSeries combines per-file series lists into one list keyed by project
// id. Identity fields come from the first file that names the project (first
// non-zero budget wins, date span widens to cover all files); points append
// and re-sort, milestones dedupe.
func MergeSeries(perFile [][]model.ProjectSeries) []model.ProjectSeries {
	byID := make(map[string]*model.ProjectSeries)
	var order []string
	seenMilestones := make(map[string]map[string]struct{})

	for _, list := range perFile {
		for _, s := range list {
			existing, ok := byID[s.ProjectID]
			if !ok {
				copied := s
				copied.Points = append([]model.SpendPoint(nil), s.Points...)
				copied.Milestones = nil
				byID[s.ProjectID] = &copied
				order = append(order, s.ProjectID)

				seenMilestones[s.ProjectID] = make(map[string]struct{})
				appendMilestones(byID[s.ProjectID], s.Milestones, seenMilestones[s.ProjectID])
				continue
			}

			existing.Points = append(existing.Points, s.Points...)
			if existing.ProjectName == "" {
				existing.ProjectName = s.ProjectName
			}
			if existing.Budget == 0 {
				existing.Budget = s.Budget
			}
			if !s.StartDate.IsZero() && (existing.StartDate.IsZero() || s.StartDate.Before(existing.StartDate)) {
				existing.StartDate = s.StartDate
			}
			if !s.EndDate.IsZero() && s.EndDate.After(existing.EndDate) {
				existing.EndDate = s.EndDate
			}
			appendMilestones(existing, s.Milestones, seenMilestones[s.ProjectID])
		}
	}

	merged := make([]model.ProjectSeries, 0, len(order))
	for _, id := range order {
		s := byID[id]
		sort.SliceStable(s.Points, func(i, j int) bool {
			return s.Points[i].Date.Before(s.Points[j].Date)
		})
		merged = append(merged, *s)
	}
	return merged
}

func appendMilestones(dst *model.ProjectSeries, ms []model.Milestone, seen map[string]struct{}) {
	for _, m := range ms {
		key := m.Name + "\x00" + m.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dst.Milestones = append(dst.Milestones, m)
	}
}
