package storage

import (
	"regexp"
	"strings"
)

// Bucket is one of the three fixed top-level storage subdirectories.
type Bucket string

const (
	BucketImages Bucket = "images"
	BucketDocs   Bucket = "docs"
	BucketMedia  Bucket = "medias"
)

// audioFieldName is the recognized form field for audio uploads; files under
// it are routed to the media bucket regardless of sniffed type.
const audioFieldName = "audioFile"

// Buckets returns all fixed buckets.
func Buckets() []Bucket {
	return []Bucket{BucketImages, BucketDocs, BucketMedia}
}

// ResolveBucket maps a declared field name and a sniffed MIME type to a
// destination bucket. First match wins:
//
//  1. audio field name or audio/* type  -> medias
//  2. application/pdf                   -> docs
//  3. image/*                           -> images
//  4. anything else                     -> images
//
// The final fallback is an explicit permissiveness, not a validation gate:
// type gating happens in the ingestor's allow-list check, which rejects
// anything that would reach the fallback with an unrecognized type.
func ResolveBucket(fieldName, mimeType string) Bucket {
	switch {
	case fieldName == audioFieldName || strings.HasPrefix(mimeType, "audio/"):
		return BucketMedia
	case mimeType == "application/pdf":
		return BucketDocs
	case strings.HasPrefix(mimeType, "image/"):
		return BucketImages
	default:
		return BucketImages
	}
}

var folderUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeFolder restricts a caller-supplied sub-folder name to alphanumeric,
// underscore and hyphen; everything else becomes an underscore. This prevents
// path traversal regardless of client input. The transform is idempotent.
func SanitizeFolder(name string) string {
	return folderUnsafe.ReplaceAllString(name, "_")
}
