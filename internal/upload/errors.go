package upload

import (
	"fmt"
	"strings"
)

// Upload rejections are typed so handlers can surface the offending value and
// the configured limit to the client. They abort the whole request before
// business logic runs.

// UnsupportedMediaTypeError reports a sniffed MIME type outside the
// allow-list.
type UnsupportedMediaTypeError struct {
	MIME    string
	Allowed []string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("File type '%s' is not allowed. Allowed types: %s", e.MIME, strings.Join(e.Allowed, ", "))
}

// FileTooLargeError reports a single file exceeding the per-file byte limit.
type FileTooLargeError struct {
	Filename string
	Size     int64
	Limit    int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", e.Limit/(1024*1024))
}

// TooManyFilesError reports a request exceeding the file count limit.
type TooManyFilesError struct {
	Count int
	Limit int
}

func (e *TooManyFilesError) Error() string {
	return fmt.Sprintf("Too many files. Maximum is %d files", e.Limit)
}

// UnknownFieldError reports a file submitted under a field name outside the
// recognized set.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unrecognized upload field '%s'", e.Field)
}
