// Package storage owns the upload directory tree. No other component writes
// or deletes inside it except through a Store implementation: uploads go in
// through Save, reclamation goes out through Remove/RemoveAll.
package storage

import (
	"context"
	"io"
)

// Store is the filesystem-backed file store used by the upload pipeline and
// the cleanup jobs. All paths exposed by a Store are root-relative,
// forward-slash separated and carry the public prefix (e.g.
// /uploads/images/a.jpg), suitable for direct URL mounting.
type Store interface {
	// Save writes the reader's content into the given bucket (and optional
	// sanitized sub-folder, images bucket only) under filename, creating
	// directories on demand. It returns the public path of the stored file.
	Save(ctx context.Context, bucket Bucket, folder, filename string, r io.Reader) (string, error)

	// Remove deletes the file at the given public path. A missing file is not
	// an error. An _optimized sibling left behind by a crashed optimization
	// run is removed alongside.
	Remove(path string) error

	// RemoveAll deletes a batch of public paths, counting successes and
	// failures independently. A single failure never aborts the batch.
	RemoveAll(paths []string) (deleted, failed int)

	// Walk enumerates every regular file under the store root, including
	// nested sub-folders, as public paths.
	Walk(ctx context.Context) ([]string, error)

	// Size returns the size in bytes of the file at the given public path.
	Size(path string) (int64, error)

	// DiskPath translates a public path into the underlying filesystem path.
	DiskPath(path string) (string, error)
}
