package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ez-mark/internal/imageio"
	"ez-mark/internal/logger"
	"ez-mark/internal/models"
	"ez-mark/internal/watermark"
)

const (
	TextPreviewFile  = "text_preview_img.png"
	ImagePreviewFile = "image_preview_img.png"
)

// ErrNoBaseImage is returned when a preview or save is requested before
// a starting image is chosen.
var ErrNoBaseImage = errors.New("no base image selected")

// WatermarkService composes watermarks for the session and owns the
// scratch preview files.
type WatermarkService struct {
	renderer *watermark.Renderer
	cache    *imageio.Cache
	logger   logger.Logger

	scratchDir string
	previewBox int
	saveOpts   imageio.SaveOptions

	mu    sync.Mutex
	stats ServiceStats
}

// Options configure a WatermarkService.
type Options struct {
	ScratchDir string
	PreviewBox int
	Save       imageio.SaveOptions
}

// ServiceStats counts completed renders.
type ServiceStats struct {
	Previews        int
	Saves           int
	LastPreviewTime time.Duration
}

// PreviewResult is one rendered preview and where it was written.
type PreviewResult struct {
	Mode       models.Mode
	Image      image.Image
	Path       string
	Size       image.Point
	SourceSize image.Point
	Revision   uint64
	Elapsed    time.Duration
}

// NewWatermarkService creates the scratch directory if needed.
func NewWatermarkService(r *watermark.Renderer, cache *imageio.Cache, log logger.Logger, opts Options) (*WatermarkService, error) {
	if r == nil || cache == nil {
		return nil, fmt.Errorf("renderer and cache are required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if opts.PreviewBox <= 0 {
		opts.PreviewBox = watermark.DefaultPreviewBox
	}
	if err := os.MkdirAll(opts.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return &WatermarkService{
		renderer:   r,
		cache:      cache,
		logger:     log,
		scratchDir: opts.ScratchDir,
		previewBox: opts.PreviewBox,
		saveOpts:   opts.Save,
	}, nil
}

// PreviewPath is the scratch file the preview for mode is written to.
func (ws *WatermarkService) PreviewPath(mode models.Mode) string {
	if mode == models.ModeImage {
		return filepath.Join(ws.scratchDir, ImagePreviewFile)
	}
	return filepath.Join(ws.scratchDir, TextPreviewFile)
}

func (ws *WatermarkService) PreviewBox() int {
	return ws.previewBox
}

// ComposeText loads the base image and draws the text watermark on it.
func (ws *WatermarkService) ComposeText(ctx context.Context, job models.TextJob) (image.Image, error) {
	if job.BasePath == "" {
		return nil, ErrNoBaseImage
	}

	base, err := ws.cache.Load(ctx, job.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load base image: %w", err)
	}

	out, err := ws.renderer.PlaceText(base.Image, job.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to place text watermark: %w", err)
	}
	return out, nil
}

// ComposeImage loads the base and watermark images and composites them.
// An empty watermark path yields the base image unchanged.
func (ws *WatermarkService) ComposeImage(ctx context.Context, job models.ImageJob) (image.Image, error) {
	if job.BasePath == "" {
		return nil, ErrNoBaseImage
	}

	base, err := ws.cache.Load(ctx, job.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load base image: %w", err)
	}

	var wm image.Image
	if job.WatermarkPath != "" {
		data, err := ws.cache.Load(ctx, job.WatermarkPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load watermark image: %w", err)
		}
		wm = data.Image
	}

	out, err := ws.renderer.PlaceImage(base.Image, wm, job.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to place image watermark: %w", err)
	}
	return out, nil
}

// Compose renders the session's current job for mode at full size.
func (ws *WatermarkService) Compose(ctx context.Context, mode models.Mode, session *models.Session) (image.Image, error) {
	switch mode {
	case models.ModeText:
		return ws.ComposeText(ctx, session.TextJob())
	case models.ModeImage:
		return ws.ComposeImage(ctx, session.ImageJob())
	default:
		return nil, mode.Validate()
	}
}

// RenderPreview composes the session's job, scales it to the preview box
// and writes it to the mode's scratch file.
func (ws *WatermarkService) RenderPreview(ctx context.Context, mode models.Mode, session *models.Session) (*PreviewResult, error) {
	start := time.Now()
	revision := session.Revision()

	full, err := ws.Compose(ctx, mode, session)
	if err != nil {
		return nil, err
	}

	preview := ws.renderer.Preview(full, ws.previewBox)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	path, err := imageio.Save(ctx, ws.PreviewPath(mode), preview, ws.saveOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	elapsed := time.Since(start)
	ws.stats.Previews++
	ws.stats.LastPreviewTime = elapsed

	return &PreviewResult{
		Mode:       mode,
		Image:      preview,
		Path:       path,
		Size:       preview.Bounds().Size(),
		SourceSize: full.Bounds().Size(),
		Revision:   revision,
		Elapsed:    elapsed,
	}, nil
}

// Save composes the session's job at full resolution and writes it to
// dest. It returns the path written, which gains ".png" when dest has
// no extension.
func (ws *WatermarkService) Save(ctx context.Context, mode models.Mode, session *models.Session, dest string) (string, error) {
	full, err := ws.Compose(ctx, mode, session)
	if err != nil {
		return "", err
	}

	path, err := imageio.Save(ctx, dest, full, ws.saveOpts)
	if err != nil {
		return "", err
	}

	ws.mu.Lock()
	ws.stats.Saves++
	ws.mu.Unlock()

	ws.logger.Info("WatermarkService", "result saved", map[string]interface{}{
		"mode":   string(mode),
		"path":   path,
		"width":  full.Bounds().Dx(),
		"height": full.Bounds().Dy(),
	})
	return path, nil
}

// SourceStamp identifies the on-disk versions of the files a mode reads.
type SourceStamp struct {
	Base      imageio.Stamp
	Watermark imageio.Stamp
}

// SourceStamp stats the session's input files for mode without decoding
// them. Text mode has no watermark file.
func (ws *WatermarkService) SourceStamp(mode models.Mode, session *models.Session) SourceStamp {
	var st SourceStamp
	switch mode {
	case models.ModeText:
		st.Base = ws.cache.Stamp(session.BasePath(models.ModeText))
	case models.ModeImage:
		job := session.ImageJob()
		st.Base = ws.cache.Stamp(job.BasePath)
		st.Watermark = ws.cache.Stamp(job.WatermarkPath)
	}
	return st
}

// ImageInfo loads (or reuses) the image at path for display purposes.
func (ws *WatermarkService) ImageInfo(ctx context.Context, path string) (*imageio.ImageData, error) {
	return ws.cache.Load(ctx, path)
}

// Stats returns a copy of the preview and save counters.
func (ws *WatermarkService) Stats() ServiceStats {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.stats
}

// Shutdown removes the scratch preview files and drops cached images.
func (ws *WatermarkService) Shutdown() {
	for _, mode := range []models.Mode{models.ModeText, models.ModeImage} {
		if err := os.Remove(ws.PreviewPath(mode)); err != nil && !errors.Is(err, os.ErrNotExist) {
			ws.logger.Warning("WatermarkService", "failed to remove preview file", map[string]interface{}{
				"path":  ws.PreviewPath(mode),
				"error": err.Error(),
			})
		}
	}
	ws.cache.Clear()
}
