package views

import (
	"image"
	"image/color"

	"ez-mark/internal/models"
	"ez-mark/internal/views/components"
	"ez-mark/internal/watermark"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

var dialogSize = fyne.NewSize(480, 560)

// Handlers are the controller callbacks the view forwards user events to.
// They run on the UI goroutine.
type Handlers struct {
	ShowScreen      func(models.Screen)
	ChooseBase      func(models.Mode)
	ChooseWatermark func()
	TextChanged     func(string)
	PositionChanged func(models.Mode, watermark.Position)
	ChooseColour    func()
	FontSizeChanged func(float64)
	TierChanged     func(watermark.SizeTier)
	Save            func(models.Mode)
}

// MainView holds the three screens of the window and the shared status
// bar. Its exported methods may be called from any goroutine.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	welcome       fyne.CanvasObject
	text          *textScreen
	image         *imageScreen
	statusBar     *components.StatusBar

	handlers Handlers
	current  models.Screen
}

// NewMainView builds all three screens inside window and shows the
// welcome screen.
func NewMainView(window fyne.Window, init Initial) *MainView {
	mv := &MainView{
		window:  window,
		current: models.ScreenWelcome,
	}

	mv.initializeComponents(init)
	mv.buildLayout()
	mv.setupEventHandlers()

	return mv
}

func (mv *MainView) initializeComponents(init Initial) {
	mv.welcome = newWelcomeScreen(
		func() { mv.emitScreen(models.ScreenText) },
		func() { mv.emitScreen(models.ScreenImage) },
	)
	mv.text = newTextScreen(init)
	mv.image = newImageScreen(init)
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	mv.text.content.Hide()
	mv.image.content.Hide()

	mv.mainContainer = container.NewBorder(
		nil,
		mv.statusBar.GetContainer(),
		nil, nil,
		container.NewStack(mv.welcome, mv.text.content, mv.image.content),
	)
	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	back := func() { mv.emitScreen(models.ScreenWelcome) }
	mv.text.toolbar.SetBackHandler(back)
	mv.image.toolbar.SetBackHandler(back)

	mv.text.toolbar.SetSaveHandler(func() { mv.emitSave(models.ModeText) })
	mv.image.toolbar.SetSaveHandler(func() { mv.emitSave(models.ModeImage) })

	mv.text.base.SetHandler(func() { mv.emitChooseBase(models.ModeText) })
	mv.image.base.SetHandler(func() { mv.emitChooseBase(models.ModeImage) })

	mv.image.watermark.SetHandler(func() {
		if mv.handlers.ChooseWatermark != nil {
			mv.handlers.ChooseWatermark()
		}
	})

	mv.text.text.OnChanged = func(s string) {
		if mv.handlers.TextChanged != nil {
			mv.handlers.TextChanged(s)
		}
	}

	mv.text.position.SetHandler(func(p watermark.Position) { mv.emitPosition(models.ModeText, p) })
	mv.image.position.SetHandler(func(p watermark.Position) { mv.emitPosition(models.ModeImage, p) })

	mv.text.colour.SetHandler(func() {
		if mv.handlers.ChooseColour != nil {
			mv.handlers.ChooseColour()
		}
	})

	mv.text.fontSize.SetHandler(func(v float64) {
		if mv.handlers.FontSizeChanged != nil {
			mv.handlers.FontSizeChanged(v)
		}
	})

	mv.image.tier.SetHandler(func(t watermark.SizeTier) {
		if mv.handlers.TierChanged != nil {
			mv.handlers.TierChanged(t)
		}
	})
}

func (mv *MainView) emitScreen(s models.Screen) {
	if mv.handlers.ShowScreen != nil {
		mv.handlers.ShowScreen(s)
	}
}

func (mv *MainView) emitSave(m models.Mode) {
	if mv.handlers.Save != nil {
		mv.handlers.Save(m)
	}
}

func (mv *MainView) emitChooseBase(m models.Mode) {
	if mv.handlers.ChooseBase != nil {
		mv.handlers.ChooseBase(m)
	}
}

func (mv *MainView) emitPosition(m models.Mode, p watermark.Position) {
	if mv.handlers.PositionChanged != nil {
		mv.handlers.PositionChanged(m, p)
	}
}

// SetHandlers connects the view to its controller. Call before Show.
func (mv *MainView) SetHandlers(h Handlers) {
	mv.handlers = h
}

// ShowScreen swaps the visible screen. Returning to the welcome screen
// clears the inputs the session forgets.
func (mv *MainView) ShowScreen(screen models.Screen) {
	fyne.Do(func() {
		mv.welcome.Hide()
		mv.text.content.Hide()
		mv.image.content.Hide()

		switch screen {
		case models.ScreenText:
			mv.text.content.Show()
		case models.ScreenImage:
			mv.image.content.Show()
		default:
			mv.text.reset()
			mv.image.reset()
			mv.statusBar.Reset()
			mv.welcome.Show()
		}
		mv.current = screen
		mv.mainContainer.Refresh()
	})
}

func (mv *MainView) SetBasePath(mode models.Mode, path string) {
	fyne.Do(func() {
		if mode == models.ModeText {
			mv.text.base.SetPath(path)
			mv.text.toolbar.EnableSave(path != "")
		} else {
			mv.image.base.SetPath(path)
			mv.image.toolbar.EnableSave(path != "")
		}
	})
}

func (mv *MainView) SetWatermarkPath(path string) {
	fyne.Do(func() {
		mv.image.watermark.SetPath(path)
	})
}

func (mv *MainView) SetColour(c color.Color) {
	fyne.Do(func() {
		mv.text.colour.SetColour(c)
	})
}

// SetPreview shows img on the screen for mode.
func (mv *MainView) SetPreview(mode models.Mode, img image.Image) {
	fyne.Do(func() {
		if mode == models.ModeText {
			mv.text.preview.SetPreview(img)
		} else {
			mv.image.preview.SetPreview(img)
		}
	})
}

func (mv *MainView) ClearPreview(mode models.Mode) {
	mv.SetPreview(mode, nil)
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

func (mv *MainView) SetBusy(busy bool) {
	fyne.Do(func() {
		mv.statusBar.SetBusy(busy)
	})
}

func (mv *MainView) SetImageInfo(width, height int, format string) {
	fyne.Do(func() {
		mv.statusBar.SetImageInfo(width, height, format)
	})
}

func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(title)
		dialog.ShowError(err, mv.window)
	})
}

func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// ShowOpenDialog asks for an image file. callback receives the chosen
// path, and is not called if the dialog is dismissed.
func (mv *MainView) ShowOpenDialog(extensions []string, callback func(path string, err error)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				callback("", err)
				return
			}
			if reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()
			callback(path, nil)
		}, mv.window)
		d.SetFilter(storage.NewExtensionFileFilter(extensions))
		d.Resize(dialogSize)
		d.Show()
	})
}

// ShowSaveDialog asks where to save the result.
func (mv *MainView) ShowSaveDialog(fileName string, callback func(path string, err error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				callback("", err)
				return
			}
			if writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			callback(path, nil)
		}, mv.window)
		d.SetFileName(fileName)
		d.Resize(dialogSize)
		d.Show()
	})
}

// ShowColourPicker opens the colour dialog preset to initial.
func (mv *MainView) ShowColourPicker(initial color.Color, callback func(color.Color)) {
	fyne.Do(func() {
		picker := dialog.NewColorPicker("Pick watermark colour", "", callback, mv.window)
		picker.Advanced = true
		picker.SetColor(initial)
		picker.Show()
	})
}

func (mv *MainView) Show() {
	mv.window.Show()
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

// CurrentScreen reports the screen last shown. Read it on the UI
// goroutine.
func (mv *MainView) CurrentScreen() models.Screen {
	return mv.current
}
