package upload

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"uploadapi/internal/config"
	"uploadapi/internal/storage"
)

var (
	allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}
	allowedDocTypes   = []string{"application/pdf"}
	allowedAudioTypes = []string{"audio/mpeg", "audio/wav", "audio/ogg", "audio/mp4"}
)

// AllowedTypes returns the full MIME allow-list in display order.
func AllowedTypes() []string {
	out := make([]string, 0, len(allowedImageTypes)+len(allowedDocTypes)+len(allowedAudioTypes))
	out = append(out, allowedImageTypes...)
	out = append(out, allowedDocTypes...)
	out = append(out, allowedAudioTypes...)
	return out
}

// AcceptedFile is the ingestor's output contract: one entry per persisted
// file, handed to the payload normalizer and the optimizer.
type AcceptedFile struct {
	Field    Field
	Path     string // public path, e.g. /uploads/images/a-170...-123.jpg
	DiskPath string
	Size     int64
	MIME     string
	Bucket   storage.Bucket
}

// Ingestor validates and persists multipart file submissions. Limits are
// fixed at construction; any violation aborts the entire request.
type Ingestor struct {
	store  storage.Store
	limits config.UploadConfig
	log    *slog.Logger
}

// NewIngestor constructs an Ingestor backed by the given store.
func NewIngestor(store storage.Store, limits config.UploadConfig, log *slog.Logger) *Ingestor {
	return &Ingestor{store: store, limits: limits, log: log}
}

// Ingest validates every file in the form against the field set, the MIME
// allow-list and the size/count limits, then persists accepted files under
// collision-resistant generated names. imageFolder, when non-empty, places
// image-bucket files under a sanitized sub-folder.
//
// On any rejection, files already written for this request are removed
// best-effort before the error is returned; the scheduled orphan scan is the
// backstop for anything a partial rollback leaves behind.
func (in *Ingestor) Ingest(ctx context.Context, form *multipart.Form, imageFolder string) ([]AcceptedFile, error) {
	total := 0
	for name, headers := range form.File {
		if _, ok := ParseField(name); !ok {
			return nil, &UnknownFieldError{Field: name}
		}
		total += len(headers)
	}
	if total > in.limits.MaxFiles {
		return nil, &TooManyFilesError{Count: total, Limit: in.limits.MaxFiles}
	}

	var accepted []AcceptedFile
	rollback := func() {
		for _, f := range accepted {
			if err := in.store.Remove(f.Path); err != nil {
				in.log.Error("rollback delete failed", "path", f.Path, "error", err)
			}
		}
	}

	// Fixed field order keeps multi-file ordering and failure behavior
	// deterministic.
	for _, field := range Fields() {
		headers := form.File[field.Key()]
		if len(headers) == 0 {
			continue
		}
		if !field.Multi() && len(headers) > 1 {
			rollback()
			return nil, &TooManyFilesError{Count: len(headers), Limit: 1}
		}
		if field.Multi() && len(headers) > in.limits.MaxGalleryFiles {
			rollback()
			return nil, &TooManyFilesError{Count: len(headers), Limit: in.limits.MaxGalleryFiles}
		}

		for _, fh := range headers {
			af, err := in.ingestOne(ctx, field, fh, imageFolder)
			if err != nil {
				rollback()
				return nil, err
			}
			accepted = append(accepted, af)
		}
	}

	return accepted, nil
}

func (in *Ingestor) ingestOne(ctx context.Context, field Field, fh *multipart.FileHeader, imageFolder string) (AcceptedFile, error) {
	if fh.Size > in.limits.MaxFileSize {
		return AcceptedFile{}, &FileTooLargeError{Filename: fh.Filename, Size: fh.Size, Limit: in.limits.MaxFileSize}
	}

	mime, err := in.sniff(fh)
	if err != nil {
		return AcceptedFile{}, fmt.Errorf("sniff %s: %w", fh.Filename, err)
	}
	if !allowed(mime) {
		return AcceptedFile{}, &UnsupportedMediaTypeError{MIME: mime.String(), Allowed: AllowedTypes()}
	}

	bucket := storage.ResolveBucket(field.Key(), mime.String())
	folder := ""
	if bucket == storage.BucketImages {
		folder = imageFolder
	}

	src, err := fh.Open()
	if err != nil {
		return AcceptedFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	name := GenerateFilename(fh.Filename)
	path, err := in.store.Save(ctx, bucket, folder, name, src)
	if err != nil {
		return AcceptedFile{}, fmt.Errorf("store %s: %w", fh.Filename, err)
	}

	diskPath, err := in.store.DiskPath(path)
	if err != nil {
		return AcceptedFile{}, err
	}

	in.log.Info("file stored",
		"field", field.Key(),
		"path", path,
		"size", fh.Size,
		"type", mime.String(),
	)

	return AcceptedFile{
		Field:    field,
		Path:     path,
		DiskPath: diskPath,
		Size:     fh.Size,
		MIME:     mime.String(),
		Bucket:   bucket,
	}, nil
}

// sniff detects the content type from the file bytes; the client-declared
// Content-Type header is never trusted.
func (in *Ingestor) sniff(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

func allowed(m *mimetype.MIME) bool {
	for _, t := range AllowedTypes() {
		if m.Is(t) {
			return true
		}
	}
	return false
}

var baseNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// GenerateFilename builds a collision-resistant name from the original:
// sanitized base + nanosecond timestamp + random suffix + original extension.
// Two files uploaded in the same instant differ by the random suffix, so no
// coordination step is needed.
func GenerateFilename(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = baseNameUnsafe.ReplaceAllString(base, "_")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d-%09d%s", base, time.Now().UnixNano(), rand.Intn(1_000_000_000), ext)
}
