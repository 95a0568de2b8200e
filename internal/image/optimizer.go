package image

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

const (
	maxWidth    = 1920
	maxHeight   = 1080
	jpegQuality = 85
)

var optimizableExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Optimizer re-encodes oversized images in place. It is best-effort by
// contract: it runs off the request path, its failures are logged and never
// surfaced, and it must never leave a larger file under the original path.
type Optimizer struct {
	fs        afero.Fs
	threshold int64
	log       *slog.Logger
}

// NewOptimizer creates an Optimizer over the given filesystem. threshold is
// the byte size above which optimization is attempted.
func NewOptimizer(fs afero.Fs, threshold int64, log *slog.Logger) *Optimizer {
	return &Optimizer{fs: fs, threshold: threshold, log: log}
}

// Optimize resizes the image at path to fit within 1920x1080 (never
// upscaling) and re-encodes it at JPEG quality 85 into a sibling file. The
// sibling replaces the original only if it is strictly smaller; otherwise it
// is discarded and the original kept. Returns whether the original was
// replaced.
func (o *Optimizer) Optimize(path string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !optimizableExts[ext] {
		return false, nil
	}

	info, err := o.fs.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() <= o.threshold {
		o.log.Info("image below optimization threshold, skipping",
			"path", path, "size", info.Size(), "threshold", o.threshold)
		return false, nil
	}

	f, err := o.fs.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	f.Close()
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}

	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	candidate := strings.TrimSuffix(path, filepath.Ext(path)) + "_optimized" + filepath.Ext(path)
	out, err := o.fs.Create(candidate)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", candidate, err)
	}
	if err := imaging.Encode(out, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		out.Close()
		_ = o.fs.Remove(candidate)
		return false, fmt.Errorf("encode %s: %w", candidate, err)
	}
	if err := out.Close(); err != nil {
		_ = o.fs.Remove(candidate)
		return false, fmt.Errorf("close %s: %w", candidate, err)
	}

	candInfo, err := o.fs.Stat(candidate)
	if err != nil {
		_ = o.fs.Remove(candidate)
		return false, fmt.Errorf("stat %s: %w", candidate, err)
	}

	// Swap only if strictly smaller; optimization never grows a stored file.
	if candInfo.Size() >= info.Size() {
		_ = o.fs.Remove(candidate)
		o.log.Info("optimized candidate not smaller, keeping original",
			"path", path, "original_size", info.Size(), "candidate_size", candInfo.Size())
		return false, nil
	}

	if err := o.fs.Remove(path); err != nil {
		_ = o.fs.Remove(candidate)
		return false, fmt.Errorf("remove original %s: %w", path, err)
	}
	if err := o.fs.Rename(candidate, path); err != nil {
		return false, fmt.Errorf("swap %s: %w", path, err)
	}

	o.log.Info("image optimized",
		"path", path, "original_size", info.Size(), "optimized_size", candInfo.Size())
	return true, nil
}

// OptimizeAsync fires Optimize on its own goroutine. The caller never awaits
// it and its outcome is not observable in the response.
func (o *Optimizer) OptimizeAsync(path string) {
	go func() {
		if _, err := o.Optimize(path); err != nil {
			o.log.Error("background image optimization failed", "path", path, "error", err)
		}
	}()
}
