package upload

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uploadapi/internal/config"
	"uploadapi/internal/storage"
)

type formFile struct {
	field   string
	name    string
	content []byte
}

func buildForm(t *testing.T, files []formFile, values map[string][]string) *multipart.Form {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func jpegBytes(n int) []byte {
	b := make([]byte, n)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'})
	return b
}

func pngBytes(n int) []byte {
	b := make([]byte, n)
	copy(b, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	return b
}

func pdfBytes() []byte {
	return []byte("%PDF-1.7 test document")
}

func mp3Bytes() []byte {
	b := make([]byte, 64)
	copy(b, "ID3")
	return b
}

func zipBytes() []byte {
	b := make([]byte, 64)
	copy(b, []byte{'P', 'K', 0x03, 0x04})
	return b
}

func testLimits() config.UploadConfig {
	return config.UploadConfig{
		Dir:             "uploads",
		PublicPrefix:    "/uploads",
		MaxFileSize:     1 << 20,
		MaxFiles:        20,
		MaxGalleryFiles: 10,
	}
}

func newTestIngestor(t *testing.T, limits config.UploadConfig) (*Ingestor, *storage.DiskStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewDiskStore(afero.NewMemMapFs(), "uploads", "/uploads", log)
	require.NoError(t, err)
	return NewIngestor(store, limits, log), store
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("profile image lands in images bucket", func(t *testing.T) {
		ing, store := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{{"profileImage", "me.jpg", jpegBytes(256)}}, nil)

		accepted, err := ing.Ingest(ctx, form, "")
		require.NoError(t, err)
		require.Len(t, accepted, 1)

		af := accepted[0]
		assert.Equal(t, FieldProfileImage, af.Field)
		assert.Equal(t, storage.BucketImages, af.Bucket)
		assert.Equal(t, "image/jpeg", af.MIME)
		assert.Regexp(t, `^/uploads/images/me-\d+-\d{9}\.jpg$`, af.Path)

		size, err := store.Size(af.Path)
		require.NoError(t, err)
		assert.Equal(t, int64(256), size)
	})

	t.Run("audio and pdf route to their buckets", func(t *testing.T) {
		ing, _ := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{
			{"audioFile", "track.mp3", mp3Bytes()},
			{"document", "contract.pdf", pdfBytes()},
		}, nil)

		accepted, err := ing.Ingest(ctx, form, "")
		require.NoError(t, err)
		require.Len(t, accepted, 2)

		byField := map[Field]AcceptedFile{}
		for _, af := range accepted {
			byField[af.Field] = af
		}
		assert.Contains(t, byField[FieldAudioFile].Path, "/uploads/medias/")
		assert.Contains(t, byField[FieldDocument].Path, "/uploads/docs/")
	})

	t.Run("gallery preserves upload order", func(t *testing.T) {
		ing, _ := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{
			{"images", "first.jpg", jpegBytes(64)},
			{"images", "second.png", pngBytes(64)},
		}, nil)

		accepted, err := ing.Ingest(ctx, form, "")
		require.NoError(t, err)
		require.Len(t, accepted, 2)
		assert.Contains(t, accepted[0].Path, "first")
		assert.Contains(t, accepted[1].Path, "second")
	})

	t.Run("image sub-folder is applied and sanitized", func(t *testing.T) {
		ing, _ := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{{"image", "pic.jpg", jpegBytes(64)}}, nil)

		accepted, err := ing.Ingest(ctx, form, "practice areas")
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Contains(t, accepted[0].Path, "/uploads/images/practice_areas/")
	})

	t.Run("unsupported type rejected with offending and allowed types", func(t *testing.T) {
		ing, store := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{{"image", "archive.zip", zipBytes()}}, nil)

		_, err := ing.Ingest(ctx, form, "")
		require.Error(t, err)

		var umt *UnsupportedMediaTypeError
		require.ErrorAs(t, err, &umt)
		assert.Equal(t, "application/zip", umt.MIME)
		assert.Equal(t, []string{
			"image/jpeg", "image/png", "image/webp",
			"application/pdf",
			"audio/mpeg", "audio/wav", "audio/ogg", "audio/mp4",
		}, umt.Allowed)
		assert.Contains(t, err.Error(), "application/zip")
		assert.Contains(t, err.Error(), "application/pdf")

		files, err := store.Walk(ctx)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("rejection rolls back files already written", func(t *testing.T) {
		ing, store := newTestIngestor(t, testLimits())
		// Field order processes image before document, so the jpeg is on disk
		// when the zip under document is rejected.
		form := buildForm(t, []formFile{
			{"image", "keep.jpg", jpegBytes(64)},
			{"document", "bad.zip", zipBytes()},
		}, nil)

		_, err := ing.Ingest(ctx, form, "")
		require.Error(t, err)

		files, err := store.Walk(ctx)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("file over the size limit", func(t *testing.T) {
		limits := testLimits()
		limits.MaxFileSize = 128
		ing, _ := newTestIngestor(t, limits)
		form := buildForm(t, []formFile{{"image", "big.jpg", jpegBytes(256)}}, nil)

		_, err := ing.Ingest(ctx, form, "")
		var ftl *FileTooLargeError
		require.ErrorAs(t, err, &ftl)
		assert.Equal(t, int64(128), ftl.Limit)
	})

	t.Run("too many files in the request", func(t *testing.T) {
		limits := testLimits()
		limits.MaxFiles = 2
		ing, _ := newTestIngestor(t, limits)
		form := buildForm(t, []formFile{
			{"images", "a.jpg", jpegBytes(64)},
			{"images", "b.jpg", jpegBytes(64)},
			{"images", "c.jpg", jpegBytes(64)},
		}, nil)

		_, err := ing.Ingest(ctx, form, "")
		var tmf *TooManyFilesError
		require.ErrorAs(t, err, &tmf)
		assert.Equal(t, 2, tmf.Limit)
		assert.Equal(t, 3, tmf.Count)
	})

	t.Run("gallery over its own cap", func(t *testing.T) {
		limits := testLimits()
		limits.MaxGalleryFiles = 1
		ing, _ := newTestIngestor(t, limits)
		form := buildForm(t, []formFile{
			{"images", "a.jpg", jpegBytes(64)},
			{"images", "b.jpg", jpegBytes(64)},
		}, nil)

		_, err := ing.Ingest(ctx, form, "")
		var tmf *TooManyFilesError
		require.ErrorAs(t, err, &tmf)
		assert.Equal(t, 1, tmf.Limit)
	})

	t.Run("unrecognized field name is rejected", func(t *testing.T) {
		ing, _ := newTestIngestor(t, testLimits())
		form := buildForm(t, []formFile{{"attachment", "a.jpg", jpegBytes(64)}}, nil)

		_, err := ing.Ingest(ctx, form, "")
		var uf *UnknownFieldError
		require.ErrorAs(t, err, &uf)
		assert.Equal(t, "attachment", uf.Field)
	})

	t.Run("declared content type is ignored in favor of sniffing", func(t *testing.T) {
		ing, _ := newTestIngestor(t, testLimits())
		// A zip with a .jpg name is still a zip.
		form := buildForm(t, []formFile{{"image", "sneaky.jpg", zipBytes()}}, nil)

		_, err := ing.Ingest(ctx, form, "")
		var umt *UnsupportedMediaTypeError
		require.ErrorAs(t, err, &umt)
		assert.Equal(t, "application/zip", umt.MIME)
	})
}

func TestGenerateFilename(t *testing.T) {
	t.Run("shape", func(t *testing.T) {
		name := GenerateFilename("My Photo (1).jpg")
		assert.Regexp(t, regexp.MustCompile(`^My_Photo__1_-\d+-\d{9}\.jpg$`), name)
	})

	t.Run("empty base falls back", func(t *testing.T) {
		name := GenerateFilename(".jpg")
		assert.True(t, strings.HasPrefix(name, "file-"))
	})

	t.Run("identical originals never collide", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 200; i++ {
			name := GenerateFilename("same.jpg")
			assert.False(t, seen[name], "duplicate generated name %s", name)
			seen[name] = true
		}
	})
}
