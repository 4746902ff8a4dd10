// Package store provides a SQLite-backed cache for parsed project series.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed series caching keyed by source file.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFileSeries replaces all cached series for one source file and records
// its tracking info, in a single transaction.
func (c *Cache) SaveFileSeries(filePath string, series []model.ProjectSeries, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM projects WHERE file_path = ?", filePath); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	for _, s := range series {
		start := ""
		if !s.StartDate.IsZero() {
			start = s.StartDate.UTC().Format(time.RFC3339)
		}
		end := ""
		if !s.EndDate.IsZero() {
			end = s.EndDate.UTC().Format(time.RFC3339)
		}

		_, err = tx.Exec(`INSERT OR REPLACE INTO projects
			(file_path, project_id, project_name, budget, start_date, end_date, parsed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			filePath, s.ProjectID, s.ProjectName, s.Budget, start, end, now,
		)
		if err != nil {
			return err
		}

		for _, p := range s.Points {
			_, err = tx.Exec(`INSERT INTO spend_points
				(file_path, project_id, date, cumulative_spend)
				VALUES (?, ?, ?, ?)`,
				filePath, s.ProjectID, p.Date.UTC().Format(time.RFC3339), p.CumulativeSpend,
			)
			if err != nil {
				return err
			}
		}

		for _, m := range s.Milestones {
			_, err = tx.Exec(`INSERT OR REPLACE INTO milestones
				(file_path, project_id, name, date)
				VALUES (?, ?, ?, ?)`,
				filePath, s.ProjectID, m.Name, m.Date.UTC().Format(time.RFC3339),
			)
			if err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, filePath, mtimeNs, sizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAllSeries reads all cached series from the database, points sorted
// ascending by date.
func (c *Cache) LoadAllSeries() ([]model.ProjectSeries, error) {
	rows, err := c.db.Query(`SELECT
		file_path, project_id, project_name, budget, start_date, end_date
		FROM projects ORDER BY file_path, project_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var all []model.ProjectSeries
	index := make(map[string]int)

	for rows.Next() {
		var s model.ProjectSeries
		var name, start, end sql.NullString
		var budget sql.NullFloat64

		if err := rows.Scan(&s.SourceFile, &s.ProjectID, &name, &budget, &start, &end); err != nil {
			return nil, err
		}
		if name.Valid {
			s.ProjectName = name.String
		}
		if budget.Valid {
			s.Budget = budget.Float64
		}
		if start.Valid && start.String != "" {
			s.StartDate, _ = time.Parse(time.RFC3339, start.String)
		}
		if end.Valid && end.String != "" {
			s.EndDate, _ = time.Parse(time.RFC3339, end.String)
		}

		index[s.SourceFile+"\x00"+s.ProjectID] = len(all)
		all = append(all, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pointRows, err := c.db.Query("SELECT file_path, project_id, date, cumulative_spend FROM spend_points")
	if err != nil {
		return nil, err
	}
	defer func() { _ = pointRows.Close() }()

	for pointRows.Next() {
		var file, id, dateStr string
		var spend float64
		if err := pointRows.Scan(&file, &id, &dateStr, &spend); err != nil {
			return nil, err
		}
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			continue
		}
		if idx, ok := index[file+"\x00"+id]; ok {
			all[idx].Points = append(all[idx].Points, model.SpendPoint{
				Date:            date,
				CumulativeSpend: spend,
			})
		}
	}
	if err := pointRows.Err(); err != nil {
		return nil, err
	}

	msRows, err := c.db.Query("SELECT file_path, project_id, name, date FROM milestones ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer func() { _ = msRows.Close() }()

	for msRows.Next() {
		var file, id, name, dateStr string
		if err := msRows.Scan(&file, &id, &name, &dateStr); err != nil {
			return nil, err
		}
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			continue
		}
		if idx, ok := index[file+"\x00"+id]; ok {
			all[idx].Milestones = append(all[idx].Milestones, model.Milestone{Name: name, Date: date})
		}
	}
	if err := msRows.Err(); err != nil {
		return nil, err
	}

	for i := range all {
		points := all[i].Points
		sort.SliceStable(points, func(a, b int) bool {
			return points[a].Date.Before(points[b].Date)
		})
	}

	return all, nil
}

// DeleteFile removes a file's series and its tracking entry.
func (c *Cache) DeleteFile(filePath string) error {
	if _, err := c.db.Exec("DELETE FROM projects WHERE file_path = ?", filePath); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// SeriesCount returns the number of cached project series.
func (c *Cache) SeriesCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}
