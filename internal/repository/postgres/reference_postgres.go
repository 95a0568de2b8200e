package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"uploadapi/internal/registry"
	"uploadapi/internal/repository"
)

// ReferencePostgres reads file-path references for the orphan scan. Table
// and column names come from the static file-field registry compiled into
// the binary, never from user input, so building the projection by string
// concatenation is safe here.
type ReferencePostgres struct {
	db *sql.DB
}

// NewReferencePostgres creates a new ReferencePostgres repository.
func NewReferencePostgres(db *sql.DB) *ReferencePostgres {
	return &ReferencePostgres{db: db}
}

var _ repository.ReferenceRepository = (*ReferencePostgres)(nil)

// ListPaths fetches the registered columns of every row in the entry's table
// and collects every non-empty path. Single-valued columns contribute one
// path; multi-valued (jsonb array) columns contribute each element. A
// malformed array value is skipped, not fatal.
func (r *ReferencePostgres) ListPaths(ctx context.Context, entry registry.Entry) ([]string, int, error) {
	if len(entry.Fields) == 0 {
		return nil, 0, nil
	}

	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(entry.Columns(), ", "), entry.Table)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", entry.Model, err)
	}
	defer rows.Close()

	var (
		paths []string
		count int
	)
	for rows.Next() {
		singles := make([]sql.NullString, len(entry.Fields))
		multis := make([][]byte, len(entry.Fields))
		dest := make([]any, len(entry.Fields))
		for i, f := range entry.Fields {
			if f.Multi {
				dest[i] = &multis[i]
			} else {
				dest[i] = &singles[i]
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, count, fmt.Errorf("scan %s row: %w", entry.Model, err)
		}
		count++

		for i, f := range entry.Fields {
			if f.Multi {
				if len(multis[i]) == 0 {
					continue
				}
				var elems []string
				if err := json.Unmarshal(multis[i], &elems); err != nil {
					continue
				}
				for _, e := range elems {
					if e != "" {
						paths = append(paths, e)
					}
				}
				continue
			}
			if singles[i].Valid && singles[i].String != "" {
				paths = append(paths, singles[i].String)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return paths, count, err
	}
	return paths, count, nil
}
