package views

import (
	"ez-mark/internal/models"
	"ez-mark/internal/views/assets"
	"ez-mark/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Initial holds the control values a fresh session starts with.
type Initial struct {
	Defaults   models.Defaults
	PreviewBox int
}

func newWelcomeScreen(onText, onImage func()) fyne.CanvasObject {
	logo := canvas.NewImageFromResource(assets.Logo)
	logo.FillMode = canvas.ImageFillContain
	logo.SetMinSize(fyne.NewSize(128, 128))

	title := widget.NewLabelWithStyle("Welcome to EZ Mark", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	title.SizeName = theme.SizeNameHeadingText
	author := widget.NewLabelWithStyle("by Csongor Szabó", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	intro := widget.NewLabelWithStyle("This EZ to use app lets you watermark your images.", fyne.TextAlignCenter, fyne.TextStyle{})
	intro.Wrapping = fyne.TextWrapWord

	textButton := widget.NewButton("Create Text Watermark", onText)
	textButton.Importance = widget.HighImportance
	imageButton := widget.NewButton("Create Image Watermark", onImage)
	imageButton.Importance = widget.HighImportance

	return container.NewBorder(
		container.NewVBox(container.NewCenter(logo), title, author, intro),
		nil, nil, nil,
		container.NewCenter(container.NewVBox(textButton, imageButton)),
	)
}

type textScreen struct {
	content  fyne.CanvasObject
	toolbar  *components.Toolbar
	preview  *components.PreviewDisplay
	base     *components.FilePicker
	text     *widget.Entry
	position *components.PositionSelect
	colour   *components.ColourButton
	fontSize *components.FontSizeSlider
}

func newTextScreen(init Initial) *textScreen {
	s := &textScreen{
		toolbar:  components.NewToolbar("Text Watermark"),
		preview:  components.NewPreviewDisplay(init.PreviewBox, assets.Logo),
		base:     components.NewFilePicker("Browse Image"),
		text:     widget.NewEntry(),
		position: components.NewPositionSelect(init.Defaults.Position),
		colour:   components.NewColourButton(init.Defaults.Colour),
		fontSize: components.NewFontSizeSlider(init.Defaults.FontSize),
	}
	s.text.SetPlaceHolder("Watermark text")

	form := widget.NewForm(
		widget.NewFormItem("Starting image", s.base.GetContainer()),
		widget.NewFormItem("Watermark text", s.text),
		widget.NewFormItem("Position", s.position.Widget()),
		widget.NewFormItem("Colour", s.colour.GetContainer()),
	)

	s.content = container.NewBorder(
		s.toolbar.GetContainer(),
		nil, nil, nil,
		container.NewVBox(s.preview.GetContainer(), form, s.fontSize.GetContainer()),
	)
	return s
}

// reset mirrors the session returning to the welcome screen, which
// forgets the base image and the text.
func (s *textScreen) reset() {
	s.preview.Clear()
	s.base.SetPath("")
	s.text.SetText("")
	s.toolbar.EnableSave(false)
}

type imageScreen struct {
	content   fyne.CanvasObject
	toolbar   *components.Toolbar
	preview   *components.PreviewDisplay
	base      *components.FilePicker
	watermark *components.FilePicker
	position  *components.PositionSelect
	tier      *components.TierSelect
}

func newImageScreen(init Initial) *imageScreen {
	s := &imageScreen{
		toolbar:   components.NewToolbar("Image Watermark"),
		preview:   components.NewPreviewDisplay(init.PreviewBox, assets.Logo),
		base:      components.NewFilePicker("Browse Image"),
		watermark: components.NewFilePicker("Browse Image"),
		position:  components.NewPositionSelect(init.Defaults.Position),
		tier:      components.NewTierSelect(init.Defaults.Tier),
	}

	form := widget.NewForm(
		widget.NewFormItem("Starting image", s.base.GetContainer()),
		widget.NewFormItem("Watermark image", s.watermark.GetContainer()),
		widget.NewFormItem("Position", s.position.Widget()),
		widget.NewFormItem("Size", s.tier.Widget()),
	)

	s.content = container.NewBorder(
		s.toolbar.GetContainer(),
		nil, nil, nil,
		container.NewVBox(s.preview.GetContainer(), form),
	)
	return s
}

func (s *imageScreen) reset() {
	s.preview.Clear()
	s.base.SetPath("")
	s.toolbar.EnableSave(false)
}
