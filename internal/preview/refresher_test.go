package preview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ez-mark/internal/config"
	"ez-mark/internal/imageio"
	"ez-mark/internal/models"
	"ez-mark/internal/services"
	"ez-mark/internal/watermark"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls []models.Mode
	err   error
	stamp services.SourceStamp
}

func (f *fakeRenderer) SourceStamp(models.Mode, *models.Session) services.SourceStamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stamp
}

func (f *fakeRenderer) setStamp(st services.SourceStamp) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stamp = st
}

func (f *fakeRenderer) RenderPreview(_ context.Context, mode models.Mode, s *models.Session) (*services.PreviewResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mode)
	if f.err != nil {
		return nil, f.err
	}
	return &services.PreviewResult{
		Mode:     mode,
		Image:    image.NewNRGBA(image.Rect(0, 0, 5, 5)),
		Size:     image.Pt(5, 5),
		Revision: s.Revision(),
	}, nil
}

func (f *fakeRenderer) Calls() []models.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Mode(nil), f.calls...)
}

type fakeSink struct {
	mu      sync.Mutex
	results []*services.PreviewResult
	errs    []error
}

func (f *fakeSink) ShowPreview(r *services.PreviewResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
}

func (f *fakeSink) ShowPreviewError(_ models.Mode, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *fakeSink) Last() *services.PreviewResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return nil
	}
	return f.results[len(f.results)-1]
}

func (f *fakeSink) Count() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results), len(f.errs)
}

func newSession(t *testing.T) *models.Session {
	t.Helper()
	d, err := models.DefaultsFromConfig(config.Default().Defaults)
	require.NoError(t, err)
	return models.NewSession(d)
}

func TestTickIdleOnWelcomeScreen(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	ref := NewRefresher(s, r, &fakeSink{}, nil, time.Second)

	require.NoError(t, s.SetBasePath(models.ModeText, "/a.png"))
	assert.False(t, ref.Tick(context.Background()))
	assert.Empty(t, r.Calls())
}

func TestTickNeedsBaseImage(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	ref := NewRefresher(s, r, &fakeSink{}, nil, time.Second)

	require.NoError(t, s.ShowScreen(models.ScreenText))
	assert.False(t, ref.Tick(context.Background()))

	require.NoError(t, s.SetBasePath(models.ModeImage, "/b.png"))
	assert.False(t, ref.Tick(context.Background()), "image base must not drive the text screen")
	assert.Empty(t, r.Calls())
}

func TestTickRendersActiveModeOncePerRevision(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	sink := &fakeSink{}
	ref := NewRefresher(s, r, sink, nil, time.Second)

	require.NoError(t, s.ShowScreen(models.ScreenImage))
	require.NoError(t, s.SetBasePath(models.ModeImage, "/b.png"))

	assert.True(t, ref.Tick(context.Background()))
	assert.False(t, ref.Tick(context.Background()))

	s.SetWatermarkPath("/logo.png")
	assert.True(t, ref.Tick(context.Background()))

	assert.Equal(t, []models.Mode{models.ModeImage, models.ModeImage}, r.Calls())
	n, _ := sink.Count()
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, ref.Renders())
}

func TestTickRendersWhenSourceStampChanges(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	ref := NewRefresher(s, r, &fakeSink{}, nil, time.Second)

	require.NoError(t, s.ShowScreen(models.ScreenImage))
	require.NoError(t, s.SetBasePath(models.ModeImage, "/b.png"))

	assert.True(t, ref.Tick(context.Background()))
	assert.False(t, ref.Tick(context.Background()))

	r.setStamp(services.SourceStamp{Watermark: imageio.Stamp{Size: 10, ModTime: 1}})
	assert.True(t, ref.Tick(context.Background()))
	assert.False(t, ref.Tick(context.Background()))
	assert.Len(t, r.Calls(), 2)
}

func TestTickPicksUpRewrittenBaseFile(t *testing.T) {
	dir := t.TempDir()
	rend, err := watermark.NewRenderer()
	require.NoError(t, err)
	svc, err := services.NewWatermarkService(rend, imageio.NewCache(4), nil, services.Options{
		ScratchDir: filepath.Join(dir, "scratch"),
	})
	require.NoError(t, err)

	base := filepath.Join(dir, "base.png")
	require.NoError(t, imaging.Save(imaging.New(100, 50, color.White), base))

	s := newSession(t)
	require.NoError(t, s.ShowScreen(models.ScreenText))
	require.NoError(t, s.SetBasePath(models.ModeText, base))

	sink := &fakeSink{}
	ref := NewRefresher(s, svc, sink, nil, time.Second)

	require.True(t, ref.Tick(context.Background()))
	require.Equal(t, image.Pt(500, 250), sink.Last().Size)

	require.NoError(t, imaging.Save(imaging.New(50, 100, color.White), base))
	later := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(base, later, later))

	for i := 0; i < 5; i++ {
		ref.Tick(context.Background())
	}

	n, failed := sink.Count()
	assert.Zero(t, failed)
	assert.Equal(t, 2, n)
	assert.Equal(t, image.Pt(250, 500), sink.Last().Size)
}

func TestTriggerForcesRender(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	ref := NewRefresher(s, r, &fakeSink{}, nil, time.Second)

	require.NoError(t, s.ShowScreen(models.ScreenText))
	require.NoError(t, s.SetBasePath(models.ModeText, "/a.png"))

	assert.True(t, ref.Tick(context.Background()))
	ref.Trigger()
	assert.True(t, ref.Tick(context.Background()))
	assert.Len(t, r.Calls(), 2)
}

func TestTickReportsErrorsOncePerRevision(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{err: errors.New("decode failed")}
	sink := &fakeSink{}
	ref := NewRefresher(s, r, sink, nil, time.Second)

	require.NoError(t, s.ShowScreen(models.ScreenText))
	require.NoError(t, s.SetBasePath(models.ModeText, "/broken.png"))

	ref.Tick(context.Background())
	ref.Tick(context.Background())

	ok, failed := sink.Count()
	assert.Zero(t, ok)
	assert.Equal(t, 1, failed)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{}
	sink := &fakeSink{}
	ref := NewRefresher(s, r, sink, nil, 5*time.Millisecond)

	require.NoError(t, s.ShowScreen(models.ScreenText))
	require.NoError(t, s.SetBasePath(models.ModeText, "/a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ref.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		n, _ := sink.Count()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	s.SetText("changed")
	require.Eventually(t, func() bool {
		n, _ := sink.Count()
		return n == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
