// Package cleanup implements the scheduled maintenance jobs: reclaiming
// stored files no database row references, and purging stale unverified
// user accounts.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"uploadapi/internal/registry"
	"uploadapi/internal/repository"
	"uploadapi/internal/storage"
)

// Summary reports the outcome of one orphan reclamation cycle.
type Summary struct {
	DocumentsScanned int
	ReferencedFiles  int
	FilesScanned     int
	FilesDeleted     int
	FailedDeletions  int
	Duration         time.Duration
}

// OrphanReclaimer deletes stored files that no registered model column
// references. A file uploaded moments before its owning row commits could
// look orphaned for one cycle; the race is accepted because the job only
// runs a few times a day and any file missed this cycle is caught by the
// next one.
type OrphanReclaimer struct {
	store   storage.Store
	refs    repository.ReferenceRepository
	reg     registry.Registry
	log     *slog.Logger
	metrics *Metrics
}

// NewOrphanReclaimer constructs an OrphanReclaimer. metrics may be nil.
func NewOrphanReclaimer(store storage.Store, refs repository.ReferenceRepository, reg registry.Registry, log *slog.Logger, metrics *Metrics) *OrphanReclaimer {
	return &OrphanReclaimer{store: store, refs: refs, reg: reg, log: log, metrics: metrics}
}

// Run executes one reclamation cycle. A model whose reference query fails
// is logged and skipped; the cycle aborts only when every query fails,
// since an empty reference set would mark the whole store as orphaned.
func (r *OrphanReclaimer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	s := &Summary{}

	referenced := make(map[string]struct{})
	var failedModels int
	for _, entry := range r.reg {
		paths, rows, err := r.refs.ListPaths(ctx, entry)
		if err != nil {
			r.log.Error("skipping model in orphan scan", "model", entry.Model, "error", err)
			failedModels++
			continue
		}
		s.DocumentsScanned += rows
		for _, p := range paths {
			referenced[p] = struct{}{}
		}
	}
	if failedModels == len(r.reg) && len(r.reg) > 0 {
		return nil, fmt.Errorf("orphan scan: all %d reference queries failed", failedModels)
	}
	s.ReferencedFiles = len(referenced)

	stored, err := r.store.Walk(ctx)
	if err != nil {
		return nil, fmt.Errorf("walk upload directory: %w", err)
	}
	s.FilesScanned = len(stored)

	var orphans []string
	for _, p := range stored {
		if _, ok := referenced[p]; !ok {
			orphans = append(orphans, p)
		}
	}

	s.FilesDeleted, s.FailedDeletions = r.store.RemoveAll(orphans)
	s.Duration = time.Since(start)

	if r.metrics != nil {
		r.metrics.OrphansDeleted.Add(float64(s.FilesDeleted))
		r.metrics.DeleteFailures.Add(float64(s.FailedDeletions))
	}

	r.log.Info("orphan reclamation finished",
		"documents_scanned", s.DocumentsScanned,
		"referenced_files", s.ReferencedFiles,
		"files_scanned", s.FilesScanned,
		"files_deleted", s.FilesDeleted,
		"failed_deletions", s.FailedDeletions,
		"duration", s.Duration.Round(time.Millisecond).String(),
	)
	return s, nil
}
