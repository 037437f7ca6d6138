package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// PreviewDisplay shows the latest watermark preview inside a fixed square
// area. Previews arrive already scaled to fit the box and are drawn at
// their own pixel size. Until one arrives the logo and a hint are shown.
type PreviewDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	hint        *widget.Label
	placeholder *fyne.Container
	logo        fyne.Resource
	box         float32

	hasPreview bool
	size       image.Point
}

// NewPreviewDisplay creates a display for a box×box preview area with
// logo as its placeholder.
func NewPreviewDisplay(box int, logo fyne.Resource) *PreviewDisplay {
	pd := &PreviewDisplay{box: float32(box), logo: logo}
	pd.createComponents()
	pd.buildLayout()
	return pd
}

func (pd *PreviewDisplay) createComponents() {
	pd.image = canvas.NewImageFromImage(nil)
	pd.image.FillMode = canvas.ImageFillContain
	pd.image.ScaleMode = canvas.ImageScaleSmooth
	pd.image.Hide()

	pd.hint = widget.NewLabel("Choose a base image to see the preview")
	pd.hint.Alignment = fyne.TextAlignCenter

	pd.placeholder = container.NewVBox()
	if pd.logo != nil {
		logo := canvas.NewImageFromResource(pd.logo)
		logo.FillMode = canvas.ImageFillContain
		logo.SetMinSize(fyne.NewSize(96, 96))
		pd.placeholder.Add(container.NewCenter(logo))
	}
	pd.placeholder.Add(pd.hint)
}

func (pd *PreviewDisplay) buildLayout() {
	bg := canvas.NewRectangle(color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	bg.StrokeColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	bg.StrokeWidth = 1
	bg.SetMinSize(fyne.NewSize(pd.box, pd.box))

	pd.container = container.NewStack(
		bg,
		container.NewCenter(pd.placeholder),
		container.NewCenter(pd.image),
	)
}

// SetPreview replaces the displayed preview. A nil image restores the
// placeholder.
func (pd *PreviewDisplay) SetPreview(img image.Image) {
	if img == nil {
		pd.Clear()
		return
	}

	b := img.Bounds()
	pd.size = image.Pt(b.Dx(), b.Dy())
	pd.image.Image = img
	pd.image.SetMinSize(fyne.NewSize(float32(pd.size.X), float32(pd.size.Y)))
	pd.image.Show()
	pd.placeholder.Hide()
	pd.hasPreview = true
	pd.image.Refresh()
}

// Clear removes the preview and shows the placeholder again.
func (pd *PreviewDisplay) Clear() {
	pd.image.Image = nil
	pd.image.Hide()
	pd.placeholder.Show()
	pd.hasPreview = false
	pd.size = image.Point{}
	pd.container.Refresh()
}

// PlaceholderVisible reports whether the logo and hint are showing.
func (pd *PreviewDisplay) PlaceholderVisible() bool {
	return pd.placeholder.Visible()
}

func (pd *PreviewDisplay) HasPreview() bool {
	return pd.hasPreview
}

// PreviewSize is the pixel size of the preview being shown.
func (pd *PreviewDisplay) PreviewSize() image.Point {
	return pd.size
}

func (pd *PreviewDisplay) GetContainer() *fyne.Container {
	return pd.container
}
