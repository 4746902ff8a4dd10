package store

import (
	"path/filepath"
	"testing"
	"time"

	"pburn/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleSeries() model.ProjectSeries {
	d := func(day int) time.Time {
		return time.Date(2025, 1, 1+day, 0, 0, 0, 0, time.UTC)
	}
	return model.ProjectSeries{
		ProjectID:   "P1",
		ProjectName: "Alpha",
		Budget:      1000,
		StartDate:   d(0),
		EndDate:     d(40),
		Points: []model.SpendPoint{
			{Date: d(0), CumulativeSpend: 0},
			{Date: d(10), CumulativeSpend: 400},
			{Date: d(20), CumulativeSpend: 800},
		},
		Milestones: []model.Milestone{
			{Name: "Kickoff", Date: d(0)},
		},
	}
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)

	s := sampleSeries()
	if err := c.SaveFileSeries("/data/spend.csv", []model.ProjectSeries{s}, 123, 456); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := c.LoadAllSeries()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("series = %d, want 1", len(loaded))
	}

	got := loaded[0]
	if got.ProjectID != "P1" || got.ProjectName != "Alpha" || got.Budget != 1000 {
		t.Errorf("identity = %s/%s/%v", got.ProjectID, got.ProjectName, got.Budget)
	}
	if got.SourceFile != "/data/spend.csv" {
		t.Errorf("SourceFile = %q", got.SourceFile)
	}
	if len(got.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(got.Points))
	}
	if got.Points[2].CumulativeSpend != 800 {
		t.Errorf("last spend = %v, want 800", got.Points[2].CumulativeSpend)
	}
	if !got.StartDate.Equal(s.StartDate) || !got.EndDate.Equal(s.EndDate) {
		t.Errorf("dates = %v..%v", got.StartDate, got.EndDate)
	}
	if len(got.Milestones) != 1 || got.Milestones[0].Name != "Kickoff" {
		t.Errorf("milestones = %v", got.Milestones)
	}
}

func TestCache_SaveReplacesFileContents(t *testing.T) {
	c := openTestCache(t)

	s := sampleSeries()
	if err := c.SaveFileSeries("/data/spend.csv", []model.ProjectSeries{s}, 1, 1); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Second save of the same file with fewer points must fully replace.
	s.Points = s.Points[:1]
	if err := c.SaveFileSeries("/data/spend.csv", []model.ProjectSeries{s}, 2, 2); err != nil {
		t.Fatalf("resave: %v", err)
	}

	loaded, err := c.LoadAllSeries()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Points) != 1 {
		t.Errorf("got %d series, %d points; want 1 series with 1 point",
			len(loaded), len(loaded[0].Points))
	}
}

func TestCache_FileTracker(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveFileSeries("/data/a.csv", []model.ProjectSeries{sampleSeries()}, 111, 222); err != nil {
		t.Fatalf("save: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	fi, ok := tracked["/data/a.csv"]
	if !ok {
		t.Fatal("file not tracked")
	}
	if fi.MtimeNs != 111 || fi.SizeBytes != 222 {
		t.Errorf("tracked = %+v, want 111/222", fi)
	}
}

func TestCache_DeleteFile(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveFileSeries("/data/a.csv", []model.ProjectSeries{sampleSeries()}, 1, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.DeleteFile("/data/a.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := c.SeriesCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if len(tracked) != 0 {
		t.Errorf("tracked = %v, want empty", tracked)
	}
}
