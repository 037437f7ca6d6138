// Package imageio reads base and watermark images from disk and writes
// results, picking codecs by file extension.
package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for extensions no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageData is a decoded image with the facts the UI reports about it.
type ImageData struct {
	Image    image.Image
	Path     string
	Width    int
	Height   int
	Format   string
	FileSize int64
	ModTime  time.Time
	LoadTime time.Time
}

// SaveOptions tune lossy encoders. Zero values pick the defaults.
type SaveOptions struct {
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

const (
	DefaultJPEGQuality = 95
	DefaultWebPQuality = 90
)

// SupportedExtensions lists the extensions offered in open dialogs.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// FormatFromExtension maps a path's extension onto a format name. The
// empty string means the extension is unknown.
func FormatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	default:
		return ""
	}
}

// Load decodes the image at path. JPEG orientation tags are applied.
func Load(ctx context.Context, path string) (*ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	img, format, err := Decode(data, FormatFromExtension(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	bounds := img.Bounds()
	return &ImageData{
		Image:    img,
		Path:     path,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		FileSize: info.Size(),
		ModTime:  info.ModTime(),
		LoadTime: time.Now(),
	}, nil
}

// Decode decodes data, trying WebP first when the extension hint says so.
func Decode(data []byte, hint string) (image.Image, string, error) {
	if hint == "webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		if err == nil {
			return img, "webp", nil
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if webpImg, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
			return webpImg, "webp", nil
		}
		return nil, "", err
	}

	_, format, cfgErr := image.DecodeConfig(bytes.NewReader(data))
	if cfgErr != nil || format == "" {
		format = hint
	}
	return img, format, nil
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string, opts SaveOptions) error {
	switch format {
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "jpeg":
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(q))
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "webp":
		q := opts.WebPQuality
		if q <= 0 {
			q = DefaultWebPQuality
		}
		return webp.Encode(w, img, &webp.Options{Lossless: opts.WebPLossless, Quality: q})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save encodes img to path. A path without an extension gets ".png".
// The image is written to a temporary file beside path and renamed into
// place, so a failed encode leaves any existing file untouched. Save
// returns the path actually written.
func Save(ctx context.Context, path string, img image.Image, opts SaveOptions) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if img == nil {
		return "", fmt.Errorf("no image data to save")
	}

	if filepath.Ext(path) == "" {
		path += ".png"
	}
	format := FormatFromExtension(path)
	if format == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ezmark-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, img, format, opts); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to flush image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}

	return path, nil
}
