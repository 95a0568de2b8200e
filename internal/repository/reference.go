package repository

import (
	"context"

	"uploadapi/internal/registry"
)

// ReferenceRepository reads stored file-path references for the orphan scan.
// It fetches only the registered file-bearing columns, never whole rows.
type ReferenceRepository interface {
	// ListPaths returns every non-empty file path held by the entry's
	// registered columns across all rows of its table, plus the number of
	// rows scanned. Multi-valued columns contribute each element of their
	// array.
	ListPaths(ctx context.Context, entry registry.Entry) (paths []string, rows int, err error)
}
