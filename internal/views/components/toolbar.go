package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar sits at the top of a watermark screen: a back button, the
// screen title and the save action.
type Toolbar struct {
	container  *fyne.Container
	backButton *widget.Button
	saveButton *widget.Button
	title      *widget.Label

	backHandler func()
	saveHandler func()
}

// NewToolbar creates a toolbar with a back button, title and a save
// button that starts disabled.
func NewToolbar(title string) *Toolbar {
	t := &Toolbar{}
	t.createComponents(title)
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents(title string) {
	t.backButton = widget.NewButtonWithIcon("Back to Home", theme.HomeIcon(), func() {
		if t.backHandler != nil {
			t.backHandler()
		}
	})

	t.saveButton = widget.NewButtonWithIcon("Save Image", theme.DocumentSaveIcon(), func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance
	t.saveButton.Disable()

	t.title = widget.NewLabelWithStyle(title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewBorder(nil, nil, t.backButton, t.saveButton, t.title)
}

func (t *Toolbar) SetBackHandler(handler func()) {
	t.backHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

// EnableSave toggles the save button; saving needs a base image.
func (t *Toolbar) EnableSave(enabled bool) {
	if enabled {
		t.saveButton.Enable()
	} else {
		t.saveButton.Disable()
	}
}

func (t *Toolbar) SaveEnabled() bool {
	return !t.saveButton.Disabled()
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
