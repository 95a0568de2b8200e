package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DiskStore implements Store over an afero filesystem rooted at a local
// upload directory. It is safe for concurrent use: filenames are made
// collision-free at generation time, so concurrent writers never touch the
// same path, and directory creation tolerates races.
type DiskStore struct {
	fs     afero.Fs
	root   string
	prefix string
	log    *slog.Logger
}

// NewDiskStore creates a DiskStore rooted at root and ensures the three
// fixed bucket directories exist. prefix is the public path prefix mounted
// by the static file server (e.g. /uploads).
func NewDiskStore(fs afero.Fs, root, prefix string, log *slog.Logger) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	prefix = "/" + strings.Trim(prefix, "/")

	s := &DiskStore{fs: fs, root: filepath.Clean(root), prefix: prefix, log: log}
	for _, b := range Buckets() {
		dir := filepath.Join(s.root, string(b))
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
		}
	}
	return s, nil
}

var _ Store = (*DiskStore)(nil)

// Save writes r into bucket/folder/filename and returns the public path.
func (s *DiskStore) Save(ctx context.Context, bucket Bucket, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	dir := filepath.Join(s.root, string(bucket))
	rel := string(bucket)
	if folder != "" {
		folder = SanitizeFolder(folder)
		dir = filepath.Join(dir, folder)
		rel = path.Join(rel, folder)
	}
	// MkdirAll is idempotent; concurrent callers racing on the same folder
	// both succeed.
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	dst := filepath.Join(dir, filename)
	f, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(s.prefix, rel, filename), nil
}

// Remove deletes the file at the public path and any _optimized sibling.
// A missing file is not an error.
func (s *DiskStore) Remove(p string) error {
	full, err := s.DiskPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", p, err)
	}

	// A crashed optimization run can leave a candidate behind.
	ext := filepath.Ext(full)
	if ext != "" {
		sibling := strings.TrimSuffix(full, ext) + "_optimized" + ext
		if err := s.fs.Remove(sibling); err == nil {
			s.log.Info("deleted optimized sibling", "path", p)
		}
	}
	return nil
}

// RemoveAll deletes a batch of public paths; failures are counted, not fatal.
func (s *DiskStore) RemoveAll(paths []string) (deleted, failed int) {
	for _, p := range paths {
		if err := s.Remove(p); err != nil {
			failed++
			s.log.Error("failed to delete file", "path", p, "error", err)
			continue
		}
		deleted++
	}
	return deleted, failed
}

// Walk enumerates every regular file under the store root as public paths.
func (s *DiskStore) Walk(ctx context.Context) ([]string, error) {
	var files []string
	err := afero.Walk(s.fs, s.root, func(fp string, info os.FileInfo, err error) error {
		if err != nil {
			// A directory that vanished mid-walk is tolerated; the scan is
			// eventually consistent by contract.
			s.log.Error("error scanning path", "path", fp, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, fp)
		if relErr != nil {
			return nil
		}
		files = append(files, path.Join(s.prefix, filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return files, err
	}
	return files, nil
}

// Size returns the byte size of the file at the public path.
func (s *DiskStore) Size(p string) (int64, error) {
	full, err := s.DiskPath(p)
	if err != nil {
		return 0, err
	}
	info, err := s.fs.Stat(full)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DiskPath translates a public path into the underlying filesystem path.
// Paths outside the public prefix or containing traversal segments are
// rejected.
func (s *DiskStore) DiskPath(p string) (string, error) {
	if !strings.HasPrefix(p, s.prefix+"/") {
		return "", fmt.Errorf("path %q is outside the upload root", p)
	}
	rel := strings.TrimPrefix(p, s.prefix+"/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || seg == "" {
			return "", fmt.Errorf("path %q is not a clean storage path", p)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Fs exposes the underlying filesystem for collaborators operating on disk
// paths (the image optimizer).
func (s *DiskStore) Fs() afero.Fs {
	return s.fs
}
