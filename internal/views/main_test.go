package views

import (
	"image"
	"testing"

	"ez-mark/internal/config"
	"ez-mark/internal/models"
	"ez-mark/internal/watermark"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T) *MainView {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("EZ Mark")
	t.Cleanup(w.Close)

	d, err := models.DefaultsFromConfig(config.Default().Defaults)
	require.NoError(t, err)
	return NewMainView(w, Initial{Defaults: d, PreviewBox: 500})
}

func TestShowScreenTogglesContent(t *testing.T) {
	mv := newTestView(t)

	assert.True(t, mv.welcome.Visible())
	assert.False(t, mv.text.content.Visible())

	mv.ShowScreen(models.ScreenImage)
	assert.False(t, mv.welcome.Visible())
	assert.True(t, mv.image.content.Visible())
	assert.Equal(t, models.ScreenImage, mv.CurrentScreen())

	mv.ShowScreen(models.ScreenWelcome)
	assert.True(t, mv.welcome.Visible())
	assert.False(t, mv.image.content.Visible())
}

func TestEventsReachHandlers(t *testing.T) {
	mv := newTestView(t)

	var (
		text   string
		pos    watermark.Position
		posFor models.Mode
		size   float64
	)
	mv.SetHandlers(Handlers{
		TextChanged: func(s string) { text = s },
		PositionChanged: func(m models.Mode, p watermark.Position) {
			posFor, pos = m, p
		},
		FontSizeChanged: func(v float64) { size = v },
	})

	test.Type(mv.text.text, "hello")
	assert.Equal(t, "hello", text)

	mv.image.position.Widget().(*widget.Select).SetSelected("Bottom Right")
	assert.Equal(t, models.ModeImage, posFor)
	assert.Equal(t, watermark.BottomRight, pos)

	mv.text.fontSize.SetValue(72)
	assert.Equal(t, 72.0, size)
}

func TestSetBasePathEnablesSave(t *testing.T) {
	mv := newTestView(t)
	assert.False(t, mv.text.toolbar.SaveEnabled())

	mv.SetBasePath(models.ModeText, "/photos/cat.png")
	assert.True(t, mv.text.toolbar.SaveEnabled())
	assert.Equal(t, "/photos/cat.png", mv.text.base.Path())
	assert.False(t, mv.image.toolbar.SaveEnabled())

	mv.ShowScreen(models.ScreenWelcome)
	assert.False(t, mv.text.toolbar.SaveEnabled())
	assert.Empty(t, mv.text.base.Path())
}

func TestSetPreview(t *testing.T) {
	mv := newTestView(t)
	img := image.NewNRGBA(image.Rect(0, 0, 500, 200))
	assert.True(t, mv.text.preview.PlaceholderVisible())

	mv.SetPreview(models.ModeText, img)
	assert.True(t, mv.text.preview.HasPreview())
	assert.False(t, mv.text.preview.PlaceholderVisible())
	assert.Equal(t, image.Pt(500, 200), mv.text.preview.PreviewSize())
	assert.False(t, mv.image.preview.HasPreview())

	mv.ClearPreview(models.ModeText)
	assert.False(t, mv.text.preview.HasPreview())
	assert.True(t, mv.text.preview.PlaceholderVisible())
}
