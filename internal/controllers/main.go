package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ez-mark/internal/imageio"
	"ez-mark/internal/logger"
	"ez-mark/internal/models"
	"ez-mark/internal/services"
	"ez-mark/internal/views"
	"ez-mark/internal/watermark"
)

const (
	loadTimeout = 30 * time.Second
	saveTimeout = 2 * time.Minute
)

// View is the part of the window the controller drives. *views.MainView
// implements it.
type View interface {
	SetHandlers(h views.Handlers)
	ShowScreen(screen models.Screen)
	SetBasePath(mode models.Mode, path string)
	SetWatermarkPath(path string)
	SetColour(c color.Color)
	SetPreview(mode models.Mode, img image.Image)
	ClearPreview(mode models.Mode)
	UpdateStatus(status string)
	SetBusy(busy bool)
	SetImageInfo(width, height int, format string)
	ShowError(title string, err error)
	ShowInfo(title, message string)
	ShowOpenDialog(extensions []string, callback func(path string, err error))
	ShowSaveDialog(fileName string, callback func(path string, err error))
	ShowColourPicker(initial color.Color, callback func(color.Color))
}

// Refresher is the preview loop as seen by the controller.
type Refresher interface {
	Trigger()
}

// MainController owns the session and turns view events into session
// changes, loads and saves. It is also the preview loop's sink.
type MainController struct {
	service   *services.WatermarkService
	session   *models.Session
	logger    logger.Logger
	view      View
	refresher Refresher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	lastSaved string
	stopOnce  sync.Once
}

// NewMainController creates a controller whose background work stops
// when ctx is cancelled or Shutdown is called.
func NewMainController(ctx context.Context, service *services.WatermarkService, session *models.Session, log logger.Logger) *MainController {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &MainController{
		service: service,
		session: session,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetMainView associates the view and connects its events.
func (mc *MainController) SetMainView(view View) {
	mc.view = view
	view.SetHandlers(views.Handlers{
		ShowScreen:      mc.ShowScreen,
		ChooseBase:      mc.ChooseBaseImage,
		ChooseWatermark: mc.ChooseWatermarkImage,
		TextChanged:     mc.SetText,
		PositionChanged: mc.SetPosition,
		ChooseColour:    mc.ChooseColour,
		FontSizeChanged: mc.SetFontSize,
		TierChanged:     mc.SetSizeTier,
		Save:            mc.SaveImage,
	})
}

func (mc *MainController) SetRefresher(r Refresher) {
	mc.refresher = r
}

func (mc *MainController) Session() *models.Session {
	return mc.session
}

func (mc *MainController) ShowScreen(screen models.Screen) {
	if err := mc.session.ShowScreen(screen); err != nil {
		mc.handleError("Navigation failed", err)
		return
	}
	mc.view.ShowScreen(screen)

	mc.logger.Debug("MainController", "screen shown", map[string]interface{}{
		"screen": string(screen),
	})

	if mode, ok := screen.Mode(); ok {
		if mc.session.BasePath(mode) == "" {
			mc.view.ClearPreview(mode)
			mc.view.UpdateStatus("Choose a starting image")
		}
		mc.trigger()
	}
}

// ChooseBaseImage asks for the starting image of mode.
func (mc *MainController) ChooseBaseImage(mode models.Mode) {
	mc.view.ShowOpenDialog(imageio.SupportedExtensions(), func(path string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		mc.background(func(ctx context.Context) { mc.loadBaseImage(ctx, mode, path) })
	})
}

// ChooseWatermarkImage asks for the image used as the watermark.
func (mc *MainController) ChooseWatermarkImage() {
	mc.view.ShowOpenDialog(imageio.SupportedExtensions(), func(path string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		mc.background(func(ctx context.Context) { mc.loadWatermarkImage(ctx, path) })
	})
}

func (mc *MainController) loadBaseImage(ctx context.Context, mode models.Mode, path string) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	mc.view.UpdateStatus("Loading image...")

	data, err := mc.service.ImageInfo(ctx, path)
	if err != nil {
		mc.handleError("Image load failed", err)
		return
	}

	if err := mc.session.SetBasePath(mode, path); err != nil {
		mc.handleError("Image load failed", err)
		return
	}

	mc.view.SetBasePath(mode, path)
	mc.view.SetImageInfo(data.Width, data.Height, data.Format)
	mc.view.UpdateStatus(fmt.Sprintf("Loaded %s", filepath.Base(path)))

	mc.logger.Info("MainController", "base image loaded", map[string]interface{}{
		"mode":   string(mode),
		"path":   path,
		"width":  data.Width,
		"height": data.Height,
		"format": data.Format,
	})
	mc.trigger()
}

func (mc *MainController) loadWatermarkImage(ctx context.Context, path string) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	data, err := mc.service.ImageInfo(ctx, path)
	if err != nil {
		mc.handleError("Watermark load failed", err)
		return
	}

	mc.session.SetWatermarkPath(path)
	mc.view.SetWatermarkPath(path)
	mc.view.UpdateStatus(fmt.Sprintf("Watermark %s (%dx%d)", filepath.Base(path), data.Width, data.Height))

	mc.logger.Info("MainController", "watermark image loaded", map[string]interface{}{
		"path":   path,
		"width":  data.Width,
		"height": data.Height,
	})
	mc.trigger()
}

func (mc *MainController) SetText(text string) {
	mc.session.SetText(text)
}

func (mc *MainController) SetPosition(mode models.Mode, pos watermark.Position) {
	if err := mc.session.SetPosition(mode, pos); err != nil {
		mc.handleError("Position change failed", err)
	}
}

// SetFontSize takes the slider value; sizes are whole points.
func (mc *MainController) SetFontSize(size float64) {
	if err := mc.session.SetFontSize(math.Round(size)); err != nil {
		mc.handleError("Font size change failed", err)
	}
}

func (mc *MainController) SetSizeTier(tier watermark.SizeTier) {
	if err := mc.session.SetSizeTier(tier); err != nil {
		mc.handleError("Size change failed", err)
	}
}

// ChooseColour opens the colour picker on the current text colour.
func (mc *MainController) ChooseColour() {
	current := mc.session.Snapshot().Colour
	mc.view.ShowColourPicker(current, func(c color.Color) {
		if c == nil {
			return
		}
		mc.session.SetColour(c)
		mc.view.SetColour(c)
		mc.logger.Debug("MainController", "colour changed", map[string]interface{}{
			"colour": watermark.HexColour(c),
		})
	})
}

// SaveImage asks for a destination and writes the full-resolution
// result for mode there.
func (mc *MainController) SaveImage(mode models.Mode) {
	base := mc.session.BasePath(mode)
	if base == "" {
		mc.handleError("Save failed", services.ErrNoBaseImage)
		return
	}

	mc.view.ShowSaveDialog(SuggestedFileName(base), func(path string, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		mc.background(func(ctx context.Context) { mc.saveResult(ctx, mode, path) })
	})
}

func (mc *MainController) saveResult(ctx context.Context, mode models.Mode, dest string) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	mc.view.SetBusy(true)
	defer mc.view.SetBusy(false)

	written, err := mc.service.Save(ctx, mode, mc.session, dest)
	if err != nil {
		removeEmptyFile(dest)
		mc.handleError("Image save failed", err)
		return
	}
	if written != dest {
		removeEmptyFile(dest)
	}

	mc.mu.Lock()
	mc.lastSaved = written
	mc.mu.Unlock()

	mc.view.UpdateStatus(fmt.Sprintf("Saved %s", filepath.Base(written)))
}

// ShowPreview implements the preview sink. Results for a screen that
// is no longer shown are dropped.
func (mc *MainController) ShowPreview(result *services.PreviewResult) {
	if mode, ok := mc.session.Screen().Mode(); !ok || mode != result.Mode {
		return
	}
	mc.view.SetPreview(result.Mode, result.Image)
}

func (mc *MainController) ShowPreviewError(mode models.Mode, err error) {
	mc.view.ClearPreview(mode)
	mc.view.UpdateStatus(fmt.Sprintf("Preview failed: %v", err))
}

// LastSaved is the path of the most recent successful save.
func (mc *MainController) LastSaved() string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lastSaved
}

// Wait blocks until background loads and saves finish.
func (mc *MainController) Wait() {
	mc.wg.Wait()
}

// Shutdown cancels background work and waits for it.
func (mc *MainController) Shutdown() {
	mc.stopOnce.Do(func() {
		mc.mu.Lock()
		mc.cancel()
		mc.mu.Unlock()
		mc.wg.Wait()
		mc.logger.Debug("MainController", "controller stopped", nil)
	})
}

// background runs fn on its own goroutine. Work arriving after Shutdown
// is dropped.
func (mc *MainController) background(fn func(ctx context.Context)) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.ctx.Err() != nil {
		mc.logger.Debug("MainController", "dropping work after shutdown", nil)
		return
	}
	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		fn(mc.ctx)
	}()
}

func (mc *MainController) trigger() {
	if mc.refresher != nil {
		mc.refresher.Trigger()
	}
}

func (mc *MainController) handleError(title string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	mc.logger.Error("MainController", err, map[string]interface{}{
		"action": title,
	})
	mc.view.ShowError(title, err)
}

// SuggestedFileName derives the save dialog's default name from the
// base image: photo.jpg becomes photo_watermarked.jpg.
func SuggestedFileName(basePath string) string {
	name := filepath.Base(basePath)
	ext := filepath.Ext(name)
	if imageio.FormatFromExtension(name) == "" {
		ext = ".png"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "_watermarked" + ext
}

// removeEmptyFile deletes the placeholder the save dialog creates when
// the result was written under a different name or not written at all.
func removeEmptyFile(path string) {
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		os.Remove(path)
	}
}
