// Package source discovers and parses dated project spend CSV files.
package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks the data directory and discovers all CSV files.
// Unreadable entries are skipped, a missing directory yields no files rather
// than an error. WalkDir's lexical order keeps discovery deterministic.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		files = append(files, DiscoveredFile{Path: path})
		return nil
	})

	return files, err
}
