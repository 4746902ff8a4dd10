package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pburn/internal/model"
	"pburn/internal/store"
)

const csvHeader = "project_id,project_name,budget,start_date,end_date,date,cumulative_spend,milestone,milestone_date\n"

func writeDataFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(csvHeader+body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesProjectsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,\n"+
			"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-11,400,,\n")
	writeDataFile(t, dir, "b.csv",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,,\n"+
			"P2,Beta,2000,2025-01-01,2025-03-01,2025-01-05,150,,\n")

	result, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFiles != 2 || result.ParsedFiles != 2 {
		t.Errorf("files = %d/%d, want 2/2", result.TotalFiles, result.ParsedFiles)
	}
	if result.ProjectCount != 2 {
		t.Fatalf("ProjectCount = %d, want 2", result.ProjectCount)
	}

	p1 := result.Series[0]
	if p1.ProjectID != "P1" {
		t.Fatalf("first series = %s, want P1 (encounter order)", p1.ProjectID)
	}
	if len(p1.Points) != 3 {
		t.Errorf("P1 points = %d, want 3 merged", len(p1.Points))
	}
	// Merged points re-sort ascending.
	if p1.Points[2].CumulativeSpend != 800 {
		t.Errorf("last point = %v, want 800", p1.Points[2].CumulativeSpend)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	result, err := Load(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalFiles != 0 || len(result.Series) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestLoad_ReportsProgress(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv", "P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,\n")
	writeDataFile(t, dir, "b.csv", "P2,Beta,2000,2025-01-01,2025-03-01,2025-01-05,150,,\n")

	var calls int
	_, err := Load(dir, func(current, total int) {
		calls++
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("progress calls = %d, want 2", calls)
	}
}

func TestLoadWithCache_SecondLoadHitsCache(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,\n"+
			"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,,\n")

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.Reparsed != 1 || first.CacheHits != 0 {
		t.Errorf("first load reparsed/hits = %d/%d, want 1/0", first.Reparsed, first.CacheHits)
	}

	second, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Reparsed != 0 || second.CacheHits != 1 {
		t.Errorf("second load reparsed/hits = %d/%d, want 0/1", second.Reparsed, second.CacheHits)
	}
	if len(second.Series) != 1 || len(second.Series[0].Points) != 2 {
		t.Fatalf("cached series shape = %+v", second.Series)
	}
}

func TestLoadWithCache_ReparsesModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDataFile(t, dir, "a.csv",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,\n")

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	if _, err := LoadWithCache(dir, cache, nil); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Grow the file; size change alone must invalidate the entry.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,,\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	second, err := LoadWithCache(dir, cache, nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Reparsed != 1 {
		t.Errorf("Reparsed = %d, want 1 after modification", second.Reparsed)
	}
	if len(second.Series[0].Points) != 2 {
		t.Errorf("points = %d, want 2 after reparse", len(second.Series[0].Points))
	}
}

func TestMergeSeries_FirstNonZeroBudgetWins(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	perFile := [][]model.ProjectSeries{
		{{ProjectID: "P1", Budget: 0, Points: []model.SpendPoint{{Date: d, CumulativeSpend: 1}}}},
		{{ProjectID: "P1", Budget: 500, Points: []model.SpendPoint{{Date: d.AddDate(0, 0, 1), CumulativeSpend: 2}}}},
	}

	merged := MergeSeries(perFile)
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1", len(merged))
	}
	if merged[0].Budget != 500 {
		t.Errorf("Budget = %v, want 500", merged[0].Budget)
	}
	if len(merged[0].Points) != 2 {
		t.Errorf("points = %d, want 2", len(merged[0].Points))
	}
}
