package source

import "pburn/internal/model"

// DiscoveredFile is one spend CSV found under the data directory.
type DiscoveredFile struct {
	Path string
}

// ParseResult holds the output of parsing a single CSV file.
// Series keeps project encounter order from the file. RowErrors counts rows
// dropped for unusable dates; coerced numeric fields degrade silently and are
// not counted here.
type ParseResult struct {
	Series    []model.ProjectSeries
	RowErrors int
	Err       error
}
