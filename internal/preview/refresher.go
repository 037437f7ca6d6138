// Package preview runs the loop that keeps the on-screen preview in step
// with the session.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"ez-mark/internal/logger"
	"ez-mark/internal/models"
	"ez-mark/internal/services"
)

// Renderer produces a preview for the session in the given mode and
// reports the versions of the files it would read.
type Renderer interface {
	RenderPreview(ctx context.Context, mode models.Mode, session *models.Session) (*services.PreviewResult, error)
	SourceStamp(mode models.Mode, session *models.Session) services.SourceStamp
}

// Sink receives each fresh preview. It is called from the refresh
// goroutine.
type Sink interface {
	ShowPreview(result *services.PreviewResult)
	ShowPreviewError(mode models.Mode, err error)
}

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 100 * time.Millisecond

type renderKey struct {
	screen   models.Screen
	revision uint64
	sources  services.SourceStamp
}

// Refresher polls the session on a fixed interval. A tick renders only
// when a watermark screen is active, that screen has a base image, and
// the screen, the session revision or one of the input files on disk
// changed since the last attempt.
type Refresher struct {
	session  *models.Session
	renderer Renderer
	sink     Sink
	logger   logger.Logger
	interval time.Duration

	mu      sync.Mutex
	last    renderKey
	hasLast bool
	renders int

	wake chan struct{}
}

func NewRefresher(session *models.Session, renderer Renderer, sink Sink, log logger.Logger, interval time.Duration) *Refresher {
	if log == nil {
		log = logger.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		session:  session,
		renderer: renderer,
		sink:     sink,
		logger:   log,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("Refresher", "preview loop started", map[string]interface{}{
		"interval_ms": r.interval.Milliseconds(),
	})

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Refresher", "preview loop stopped", nil)
			return
		case <-ticker.C:
			r.Tick(ctx)
		case <-r.wake:
			r.Tick(ctx)
		}
	}
}

// Trigger forgets the last render so the next tick renders even if the
// session is unchanged, and wakes the loop.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	r.hasLast = false
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Tick performs one poll and reports whether a render was attempted.
func (r *Refresher) Tick(ctx context.Context) bool {
	screen := r.session.Screen()
	mode, ok := screen.Mode()
	if !ok || r.session.BasePath(mode) == "" {
		return false
	}

	key := renderKey{
		screen:   screen,
		revision: r.session.Revision(),
		sources:  r.renderer.SourceStamp(mode, r.session),
	}

	r.mu.Lock()
	if r.hasLast && r.last == key {
		r.mu.Unlock()
		return false
	}
	r.last = key
	r.hasLast = true
	r.renders++
	r.mu.Unlock()

	result, err := r.renderer.RenderPreview(ctx, mode, r.session)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		r.logger.Error("Refresher", err, map[string]interface{}{
			"mode":     string(mode),
			"revision": key.revision,
		})
		r.sink.ShowPreviewError(mode, err)
		return true
	}

	r.logger.Debug("Refresher", "preview rendered", map[string]interface{}{
		"mode":       string(mode),
		"revision":   result.Revision,
		"width":      result.Size.X,
		"height":     result.Size.Y,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})
	r.sink.ShowPreview(result)
	return true
}

// Renders counts render attempts since start.
func (r *Refresher) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}
