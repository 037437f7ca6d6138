package imageio

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func TestFormatFromExtension(t *testing.T) {
	tests := map[string]string{
		"a.png":  "png",
		"a.JPG":  "jpeg",
		"a.jpeg": "jpeg",
		"a.tif":  "tiff",
		"a.webp": "webp",
		"a.bmp":  "bmp",
		"a.gif":  "gif",
		"a.psd":  "",
		"noext":  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFromExtension(in), in)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	src := testImage(64, 32)

	for _, ext := range []string{".png", ".jpg", ".bmp", ".tiff", ".webp"} {
		t.Run(ext, func(t *testing.T) {
			path, err := Save(ctx, filepath.Join(dir, "out"+ext), src, SaveOptions{WebPLossless: true})
			require.NoError(t, err)

			data, err := Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, 64, data.Width)
			assert.Equal(t, 32, data.Height)
			assert.Equal(t, FormatFromExtension(path), data.Format)
			assert.Positive(t, data.FileSize)
		})
	}
}

func TestSaveAddsPNGExtension(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(context.Background(), filepath.Join(dir, "result"), testImage(4, 4), SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result.png"), path)

	data, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "png", data.Format)
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	_, err := Save(context.Background(), filepath.Join(t.TempDir(), "x.psd"), testImage(2, 2), SaveOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(context.Background(), filepath.Join(dir, "a.png"), testImage(3, 3), SaveOptions{})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())
}

func TestSaveNilImage(t *testing.T) {
	_, err := Save(context.Background(), filepath.Join(t.TempDir(), "a.png"), nil, SaveOptions{})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0o644))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, "whatever.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheHitsAndInvalidates(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path, err := Save(ctx, filepath.Join(dir, "c.png"), testImage(10, 10), SaveOptions{})
	require.NoError(t, err)

	c := NewCache(4)
	first, err := c.Load(ctx, path)
	require.NoError(t, err)
	second, err := c.Load(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1}, c.Stats())

	_, err = Save(ctx, path, testImage(20, 10), SaveOptions{})
	require.NoError(t, err)
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := c.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 20, third.Width)
}

func TestStampTracksFileChanges(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path, err := Save(ctx, filepath.Join(dir, "s.png"), testImage(4, 4), SaveOptions{})
	require.NoError(t, err)

	c := NewCache(1)
	first := c.Stamp(path)
	assert.NotZero(t, first)
	assert.Equal(t, first, c.Stamp(path))

	later := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.NotEqual(t, first, c.Stamp(path))

	assert.Zero(t, c.Stamp(filepath.Join(dir, "missing.png")))
	assert.Zero(t, StampFile(""))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	c := NewCache(2)

	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p, err := Save(ctx, filepath.Join(dir, name), testImage(2, 2), SaveOptions{})
		require.NoError(t, err)
		paths = append(paths, p)
	}

	_, err := c.Load(ctx, paths[0])
	require.NoError(t, err)
	_, err = c.Load(ctx, paths[1])
	require.NoError(t, err)
	_, err = c.Load(ctx, paths[0])
	require.NoError(t, err)
	_, err = c.Load(ctx, paths[2])
	require.NoError(t, err)

	assert.Equal(t, 2, c.Stats().Entries)

	// b was least recently used, so it is decoded again; a is still cached.
	before := c.Stats().Misses
	_, err = c.Load(ctx, paths[0])
	require.NoError(t, err)
	assert.Equal(t, before, c.Stats().Misses)
	_, err = c.Load(ctx, paths[1])
	require.NoError(t, err)
	assert.Equal(t, before+1, c.Stats().Misses)

	c.Forget(paths[2])
	assert.Equal(t, 1, c.Stats().Entries)

	c.Clear()
	assert.Zero(t, c.Stats().Entries)
}
