package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"ez-mark/internal/config"
	"ez-mark/internal/controllers"
	"ez-mark/internal/imageio"
	"ez-mark/internal/logger"
	"ez-mark/internal/models"
	"ez-mark/internal/preview"
	"ez-mark/internal/resample"
	"ez-mark/internal/services"
	"ez-mark/internal/shutdown"
	"ez-mark/internal/views"
	"ez-mark/internal/views/assets"
	"ez-mark/internal/watermark"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "EZ Mark"
	AppID      = "com.ezmark.desktop"
	AppVersion = "1.0.0"

	statsInterval = 30 * time.Second
)

// Application wires the models, services, controller and view together.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	config  *config.Config

	controller *controllers.MainController
	view       *views.MainView
	service    *services.WatermarkService
	cache      *imageio.Cache
	refresher  *preview.Refresher

	shutdown    *shutdown.Manager
	previewDone chan struct{}
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (default $"+config.EnvConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

func newLogger(c config.LogConfig) logger.Logger {
	level := logger.ParseLevel(c.Level)
	if c.Format == "json" {
		return logger.New(os.Stderr, level)
	}
	return logger.NewConsoleLogger(level)
}

// NewApplication builds every component from cfg.
func NewApplication(cfg *config.Config) (*Application, error) {
	appLogger := newLogger(cfg.Log)

	resampler, err := resample.New(cfg.Preview.Resampler)
	if err != nil {
		return nil, err
	}

	rendererOpts := []watermark.Option{watermark.WithResampler(resampler)}
	if cfg.Defaults.FontPath != "" {
		rendererOpts = append(rendererOpts, watermark.WithFontFile(cfg.Defaults.FontPath))
	}
	renderer, err := watermark.NewRenderer(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	cache := imageio.NewCache(cfg.Preview.CacheSize)
	service, err := services.NewWatermarkService(renderer, cache, appLogger, services.Options{
		ScratchDir: cfg.Preview.ScratchDir,
		PreviewBox: cfg.Preview.Box,
		Save: imageio.SaveOptions{
			JPEGQuality:  cfg.Output.JPEGQuality,
			WebPQuality:  cfg.Output.WebPQuality,
			WebPLossless: cfg.Output.WebPLossless,
		},
	})
	if err != nil {
		return nil, err
	}

	defaults, err := models.DefaultsFromConfig(cfg.Defaults)
	if err != nil {
		return nil, err
	}
	session := models.NewSession(defaults)

	manager := shutdown.NewManager(appLogger)

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
		Icon:    assets.Logo,
	})

	window := fyneApp.NewWindow(AppName)
	window.SetIcon(assets.Logo)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.SetFixedSize(true)
	window.CenterOnScreen()

	controller := controllers.NewMainController(manager.Context(), service, session, appLogger)
	view := views.NewMainView(window, views.Initial{
		Defaults:   defaults,
		PreviewBox: service.PreviewBox(),
	})
	controller.SetMainView(view)

	refresher := preview.NewRefresher(session, service, controller, appLogger, cfg.Preview.Interval.Duration)
	controller.SetRefresher(refresher)

	application := &Application{
		fyneApp:     fyneApp,
		window:      window,
		logger:      appLogger,
		config:      cfg,
		controller:  controller,
		view:        view,
		service:     service,
		cache:       cache,
		refresher:   refresher,
		shutdown:    manager,
		previewDone: make(chan struct{}),
	}

	// Stopped in reverse: preview loop, controller, then scratch files.
	manager.Register("watermark service", service)
	manager.Register("controller", controller)
	manager.Register("preview loop", shutdown.Func(func() { <-application.previewDone }))

	window.SetOnClosed(func() {
		appLogger.Info("Application", "window closed", nil)
		manager.Shutdown()
	})

	appLogger.Info("Application", "application initialized", map[string]interface{}{
		"version":     AppVersion,
		"go_version":  runtime.Version(),
		"resampler":   resampler.Name(),
		"font":        renderer.FontName(),
		"scratch_dir": cfg.Preview.ScratchDir,
		"interval_ms": cfg.Preview.Interval.Milliseconds(),
		"log_level":   cfg.Log.Level,
	})

	return application, nil
}

// Run shows the window and blocks until the UI exits.
func (a *Application) Run() {
	a.shutdown.Listen()
	ctx := a.shutdown.Context()

	go func() {
		defer close(a.previewDone)
		a.refresher.Run(ctx)
	}()
	go a.startStatsMonitoring()

	go func() {
		<-a.shutdown.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.view.Show()
	a.fyneApp.Run()

	a.shutdown.Shutdown()
	a.logger.Info("Application", "application terminated", nil)
}

func (a *Application) startStatsMonitoring() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	ctx := a.shutdown.Context()
	for {
		select {
		case <-ticker.C:
			a.logStats()
		case <-ctx.Done():
			return
		}
	}
}

func (a *Application) logStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	serviceStats := a.service.Stats()
	cacheStats := a.cache.Stats()

	a.logger.Debug("Application", "runtime stats", map[string]interface{}{
		"go_memory_mb":    memStats.Alloc / 1024 / 1024,
		"go_gc_runs":      memStats.NumGC,
		"goroutines":      runtime.NumGoroutine(),
		"previews":        serviceStats.Previews,
		"saves":           serviceStats.Saves,
		"last_preview_ms": serviceStats.LastPreviewTime.Milliseconds(),
		"preview_renders": a.refresher.Renders(),
		"cache_entries":   cacheStats.Entries,
		"cache_hits":      cacheStats.Hits,
		"cache_misses":    cacheStats.Misses,
		"last_saved":      a.controller.LastSaved(),
	})
}
