package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeCSV creates a temp CSV file and returns a DiscoveredFile for it.
func writeCSV(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "spend.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path}
}

const header = "project_id,project_name,budget,start_date,end_date,date,cumulative_spend,milestone,milestone_date"

func TestParseFile_GroupsByProject(t *testing.T) {
	df := writeCSV(t,
		header,
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,",
		"P2,Beta,2000,2025-01-01,2025-03-01,2025-01-05,150,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-11,400,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,,",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Series) != 2 {
		t.Fatalf("series = %d, want 2", len(result.Series))
	}

	// Encounter order: P1 before P2.
	if result.Series[0].ProjectID != "P1" || result.Series[1].ProjectID != "P2" {
		t.Errorf("order = %s, %s, want P1, P2", result.Series[0].ProjectID, result.Series[1].ProjectID)
	}

	p1 := result.Series[0]
	if p1.ProjectName != "Alpha" || p1.Budget != 1000 {
		t.Errorf("P1 identity = %q/%v", p1.ProjectName, p1.Budget)
	}
	if len(p1.Points) != 3 {
		t.Fatalf("P1 points = %d, want 3", len(p1.Points))
	}
	if p1.Points[2].CumulativeSpend != 800 {
		t.Errorf("last point spend = %v, want 800", p1.Points[2].CumulativeSpend)
	}
}

func TestParseFile_SortsPointsByDate(t *testing.T) {
	df := writeCSV(t,
		header,
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-11,400,,",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	points := result.Series[0].Points
	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Errorf("points not ascending at %d: %v after %v", i, points[i].Date, points[i-1].Date)
		}
	}
}

func TestParseFile_CoercesMalformedNumbers(t *testing.T) {
	df := writeCSV(t,
		header,
		"P1,Alpha,not-a-number,2025-01-01,2025-02-10,2025-01-01,100,,",
		"P1,Alpha,not-a-number,2025-01-01,2025-02-10,2025-01-11,oops,,",
		"P1,Alpha,not-a-number,2025-01-01,2025-02-10,2025-01-21,\"$1,200\",,",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.RowErrors != 0 {
		t.Errorf("RowErrors = %d, want 0 (coercion is not a row error)", result.RowErrors)
	}

	s := result.Series[0]
	if s.Budget != 0 {
		t.Errorf("Budget = %v, want 0 (missing)", s.Budget)
	}
	// Malformed spend drops the point; currency formatting parses.
	if len(s.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(s.Points))
	}
	if s.Points[1].CumulativeSpend != 1200 {
		t.Errorf("spend = %v, want 1200", s.Points[1].CumulativeSpend)
	}
}

func TestParseFile_DropsRowsWithBadDates(t *testing.T) {
	df := writeCSV(t,
		header,
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,100,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,someday,200,,",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.RowErrors != 1 {
		t.Errorf("RowErrors = %d, want 1", result.RowErrors)
	}
	if len(result.Series[0].Points) != 1 {
		t.Errorf("points = %d, want 1", len(result.Series[0].Points))
	}
}

func TestParseFile_MilestoneDedupe(t *testing.T) {
	df := writeCSV(t,
		header,
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-01,0,Kickoff,2025-01-01",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-11,400,Kickoff,2025-01-01",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-21,800,Handover,2025-02-10",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	ms := result.Series[0].Milestones
	if len(ms) != 2 {
		t.Fatalf("milestones = %v, want 2 distinct", ms)
	}
	if ms[0].Name != "Kickoff" || ms[1].Name != "Handover" {
		t.Errorf("milestones = %v", ms)
	}
}

func TestParseFile_DateSpanFromRows(t *testing.T) {
	// start_date takes the minimum, end_date the maximum across rows.
	df := writeCSV(t,
		header,
		"P1,Alpha,1000,2025-01-05,2025-02-01,2025-01-05,0,,",
		"P1,Alpha,1000,2025-01-01,2025-02-10,2025-01-11,400,,",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	s := result.Series[0]
	wantStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	if !s.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", s.StartDate, wantStart)
	}
	if !s.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", s.EndDate, wantEnd)
	}
}

func TestParseFile_EmptyFile(t *testing.T) {
	df := writeCSV(t)
	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error on empty file: %v", result.Err)
	}
	if len(result.Series) != 0 {
		t.Errorf("series = %d, want 0", len(result.Series))
	}
}

func TestParseFile_MissingRequiredColumn(t *testing.T) {
	df := writeCSV(t,
		"project_id,project_name,budget",
		"P1,Alpha,1000",
	)
	result := ParseFile(df)
	if result.Err == nil {
		t.Fatal("expected error for missing date/spend columns")
	}
}
