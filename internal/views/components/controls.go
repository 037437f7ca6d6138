package components

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"ez-mark/internal/watermark"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	MinFontSize = 0
	MaxFontSize = 500
)

// PositionLabel turns "bottom-right" into "Bottom Right".
func PositionLabel(p watermark.Position) string {
	return titleWords(string(p))
}

// SizeTierLabel turns "large" into "Large".
func SizeTierLabel(t watermark.SizeTier) string {
	return titleWords(string(t))
}

func titleWords(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func positionOptions() ([]string, map[string]watermark.Position) {
	labels := make([]string, 0, 4)
	lookup := make(map[string]watermark.Position, 4)
	for _, p := range watermark.Positions() {
		l := PositionLabel(p)
		labels = append(labels, l)
		lookup[l] = p
	}
	return labels, lookup
}

// FilePicker is a button with the chosen file's name beside it.
type FilePicker struct {
	container *fyne.Container
	button    *widget.Button
	name      *widget.Label
	path      string

	handler func()
}

// NewFilePicker creates a browse button with label and an empty path
// readout.
func NewFilePicker(label string) *FilePicker {
	fp := &FilePicker{}
	fp.button = widget.NewButtonWithIcon(label, theme.FolderOpenIcon(), func() {
		if fp.handler != nil {
			fp.handler()
		}
	})
	fp.name = widget.NewLabel("No file chosen")
	fp.name.Truncation = fyne.TextTruncateEllipsis
	fp.container = container.NewBorder(nil, nil, fp.button, nil, fp.name)
	return fp
}

func (fp *FilePicker) SetHandler(handler func()) {
	fp.handler = handler
}

// SetPath shows the file name of path; empty clears it.
func (fp *FilePicker) SetPath(path string) {
	fp.path = path
	if path == "" {
		fp.name.SetText("No file chosen")
		return
	}
	fp.name.SetText(filepath.Base(path))
}

func (fp *FilePicker) Path() string {
	return fp.path
}

func (fp *FilePicker) GetContainer() *fyne.Container {
	return fp.container
}

// PositionSelect picks one of the four corners.
type PositionSelect struct {
	selector *widget.Select
	lookup   map[string]watermark.Position
	handler  func(watermark.Position)
	quiet    bool
}

// NewPositionSelect creates a corner dropdown showing initial.
func NewPositionSelect(initial watermark.Position) *PositionSelect {
	ps := &PositionSelect{}
	labels, lookup := positionOptions()
	ps.lookup = lookup
	ps.selector = widget.NewSelect(labels, func(label string) {
		if ps.quiet || ps.handler == nil {
			return
		}
		if pos, ok := ps.lookup[label]; ok {
			ps.handler(pos)
		}
	})
	ps.Set(initial)
	return ps
}

// SetHandler is called with the corner the user picks.
func (ps *PositionSelect) SetHandler(handler func(watermark.Position)) {
	ps.handler = handler
}

// Set changes the selection without notifying the handler.
func (ps *PositionSelect) Set(pos watermark.Position) {
	ps.quiet = true
	ps.selector.SetSelected(PositionLabel(pos))
	ps.quiet = false
}

func (ps *PositionSelect) Selected() watermark.Position {
	return ps.lookup[ps.selector.Selected]
}

func (ps *PositionSelect) Widget() fyne.CanvasObject {
	return ps.selector
}

// TierSelect picks the image watermark size tier.
type TierSelect struct {
	selector *widget.Select
	lookup   map[string]watermark.SizeTier
	handler  func(watermark.SizeTier)
	quiet    bool
}

// NewTierSelect creates a size tier dropdown showing initial.
func NewTierSelect(initial watermark.SizeTier) *TierSelect {
	ts := &TierSelect{lookup: make(map[string]watermark.SizeTier)}
	labels := make([]string, 0, 3)
	for _, t := range watermark.SizeTiers() {
		l := SizeTierLabel(t)
		labels = append(labels, l)
		ts.lookup[l] = t
	}
	ts.selector = widget.NewSelect(labels, func(label string) {
		if ts.quiet || ts.handler == nil {
			return
		}
		if tier, ok := ts.lookup[label]; ok {
			ts.handler(tier)
		}
	})
	ts.Set(initial)
	return ts
}

// SetHandler is called with the tier the user picks.
func (ts *TierSelect) SetHandler(handler func(watermark.SizeTier)) {
	ts.handler = handler
}

func (ts *TierSelect) Set(tier watermark.SizeTier) {
	ts.quiet = true
	ts.selector.SetSelected(SizeTierLabel(tier))
	ts.quiet = false
}

func (ts *TierSelect) Selected() watermark.SizeTier {
	return ts.lookup[ts.selector.Selected]
}

func (ts *TierSelect) Widget() fyne.CanvasObject {
	return ts.selector
}

// ColourButton shows the current text colour and opens the picker.
type ColourButton struct {
	container *fyne.Container
	swatch    *canvas.Rectangle
	hex       *widget.Label
	button    *widget.Button
	colour    color.Color

	handler func()
}

// NewColourButton creates a button with a swatch of initial.
func NewColourButton(initial color.Color) *ColourButton {
	cb := &ColourButton{}
	cb.swatch = canvas.NewRectangle(initial)
	cb.swatch.SetMinSize(fyne.NewSize(24, 24))
	cb.swatch.CornerRadius = 4
	cb.hex = widget.NewLabel("")
	cb.button = widget.NewButtonWithIcon("Choose Colour", theme.ColorPaletteIcon(), func() {
		if cb.handler != nil {
			cb.handler()
		}
	})
	cb.container = container.NewHBox(cb.button, cb.swatch, cb.hex)
	cb.SetColour(initial)
	return cb
}

func (cb *ColourButton) SetHandler(handler func()) {
	cb.handler = handler
}

// SetColour updates the swatch and the hex readout.
func (cb *ColourButton) SetColour(c color.Color) {
	cb.colour = c
	cb.swatch.FillColor = c
	cb.swatch.Refresh()
	cb.hex.SetText(watermark.HexColour(c))
}

func (cb *ColourButton) Colour() color.Color {
	return cb.colour
}

func (cb *ColourButton) GetContainer() *fyne.Container {
	return cb.container
}

// FontSizeSlider selects the text size in whole points.
type FontSizeSlider struct {
	container *fyne.Container
	slider    *widget.Slider
	value     *widget.Label
	handler   func(float64)
}

// NewFontSizeSlider creates a slider over the allowed font sizes.
func NewFontSizeSlider(initial float64) *FontSizeSlider {
	fs := &FontSizeSlider{}
	fs.value = widget.NewLabel("")
	fs.slider = widget.NewSlider(MinFontSize, MaxFontSize)
	fs.slider.Step = 1
	fs.slider.SetValue(initial)
	fs.showValue(initial)
	fs.slider.OnChanged = func(v float64) {
		fs.showValue(v)
		if fs.handler != nil {
			fs.handler(v)
		}
	}
	fs.container = container.NewBorder(nil, nil, widget.NewLabel("Font Size"), fs.value, fs.slider)
	return fs
}

func (fs *FontSizeSlider) showValue(v float64) {
	fs.value.SetText(fmt.Sprintf("%3.0f", v))
}

func (fs *FontSizeSlider) SetHandler(handler func(float64)) {
	fs.handler = handler
}

// SetValue moves the slider, notifying the handler like a drag would.
func (fs *FontSizeSlider) SetValue(v float64) {
	fs.slider.SetValue(v)
}

func (fs *FontSizeSlider) Value() float64 {
	return fs.slider.Value
}

func (fs *FontSizeSlider) GetContainer() *fyne.Container {
	return fs.container
}
