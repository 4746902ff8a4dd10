package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"pburn/internal/model"
	"pburn/internal/source"
	"pburn/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers files, diffs them against the cache by mtime and
// size, reparses only changed files, and returns the merged result set.
func LoadWithCache(dataDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files)},
	}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var toReparse []source.DiscoveredFile
	fileInfo := make(map[string]os.FileInfo)
	unchangedSet := make(map[string]struct{})

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		fileInfo[f.Path] = info

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchangedSet[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchangedSet)
	result.Reparsed = len(toReparse)

	// Group cached series by file for merge ordering.
	perFile := make(map[string][]model.ProjectSeries)
	if len(unchangedSet) > 0 {
		cached, err := cache.LoadAllSeries()
		if err != nil {
			return nil, fmt.Errorf("loading cached series: %w", err)
		}
		for _, s := range cached {
			if _, ok := unchangedSet[s.SourceFile]; ok {
				perFile[s.SourceFile] = append(perFile[s.SourceFile], s)
			}
		}
	}

	// Reparse changed files and refresh their cache entries. A cache write
	// failure degrades to uncached behavior for that file.
	if len(toReparse) > 0 {
		parsed := parseAll(toReparse, progressFn)
		for i, pr := range parsed {
			path := toReparse[i].Path
			if pr.Err != nil {
				result.FileErrors++
				continue
			}
			result.ParsedFiles++
			result.RowErrors += pr.RowErrors
			perFile[path] = pr.Series

			if info, ok := fileInfo[path]; ok {
				_ = cache.SaveFileSeries(path, pr.Series, info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	// Drop cache entries for files that disappeared from disk.
	current := make(map[string]struct{}, len(files))
	for _, f := range files {
		current[f.Path] = struct{}{}
	}
	for path := range tracked {
		if _, ok := current[path]; !ok {
			_ = cache.DeleteFile(path)
		}
	}

	// Merge in discovery order so encounter order stays deterministic.
	ordered := make([][]model.ProjectSeries, 0, len(files))
	for _, f := range files {
		if list, ok := perFile[f.Path]; ok {
			ordered = append(ordered, list)
		}
	}
	result.Series = MergeSeries(ordered)
	result.ProjectCount = len(result.Series)

	return result, nil
}

// CacheDir returns the XDG-compliant cache directory for pburn.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "pburn")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "cache.db")
}
