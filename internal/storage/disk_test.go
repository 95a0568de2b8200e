package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(afero.NewMemMapFs(), "uploads", "/uploads", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestDiskStoreSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("image into images bucket", func(t *testing.T) {
		p, err := s.Save(ctx, BucketImages, "", "photo-1-2.jpg", strings.NewReader("jpegdata"))
		require.NoError(t, err)
		assert.Equal(t, "/uploads/images/photo-1-2.jpg", p)

		size, err := s.Size(p)
		require.NoError(t, err)
		assert.Equal(t, int64(8), size)
	})

	t.Run("sub-folder is sanitized and created on demand", func(t *testing.T) {
		p, err := s.Save(ctx, BucketImages, "my folder", "a.png", strings.NewReader("png"))
		require.NoError(t, err)
		assert.Equal(t, "/uploads/images/my_folder/a.png", p)
	})

	t.Run("duplicate filename is rejected", func(t *testing.T) {
		_, err := s.Save(ctx, BucketDocs, "", "dup.pdf", strings.NewReader("a"))
		require.NoError(t, err)
		_, err = s.Save(ctx, BucketDocs, "", "dup.pdf", strings.NewReader("b"))
		assert.Error(t, err)
	})

	t.Run("path-traversing filename is rejected", func(t *testing.T) {
		_, err := s.Save(ctx, BucketImages, "", "../evil.jpg", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestDiskStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.Save(ctx, BucketImages, "", "gone.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	// Simulate a candidate left behind by a crashed optimization run.
	sibling := "uploads/images/gone_optimized.jpg"
	require.NoError(t, afero.WriteFile(s.Fs(), sibling, []byte("y"), 0o644))

	require.NoError(t, s.Remove(p))

	_, err = s.Size(p)
	assert.Error(t, err)
	exists, _ := afero.Exists(s.Fs(), sibling)
	assert.False(t, exists)

	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, s.Remove("/uploads/images/never-existed.jpg"))
	})

	t.Run("path outside the root is rejected", func(t *testing.T) {
		assert.Error(t, s.Remove("/etc/passwd"))
		assert.Error(t, s.Remove("/uploads/images/../../etc/passwd"))
	})
}

func TestDiskStoreRemoveAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p1, err := s.Save(ctx, BucketImages, "", "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	p2, err := s.Save(ctx, BucketDocs, "", "b.pdf", strings.NewReader("y"))
	require.NoError(t, err)

	deleted, failed := s.RemoveAll([]string{p1, p2, "/outside/root.txt"})
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, failed)
}

func TestDiskStoreWalk(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p1, err := s.Save(ctx, BucketImages, "", "top.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	p2, err := s.Save(ctx, BucketImages, "nested", "deep.jpg", strings.NewReader("y"))
	require.NoError(t, err)
	p3, err := s.Save(ctx, BucketMedia, "", "track.mp3", strings.NewReader("z"))
	require.NoError(t, err)

	files, err := s.Walk(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1, p2, p3}, files)
}

func TestDiskPath(t *testing.T) {
	s := newTestStore(t)

	full, err := s.DiskPath("/uploads/images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "uploads/images/a.jpg", full)

	_, err = s.DiskPath("/elsewhere/a.jpg")
	assert.Error(t, err)

	_, err = s.DiskPath("/uploads/../secrets.txt")
	assert.Error(t, err)
}
