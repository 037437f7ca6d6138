package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const readyStatus = "Ready"

// StatusBar displays the last action and details of the base image.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
	busy        *widget.ProgressBarInfinite
}

// NewStatusBar creates a status bar reading "Ready".
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel(readyStatus)
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.imageInfo = widget.NewLabel("No image loaded")
	sb.busy = widget.NewProgressBarInfinite()
	sb.busy.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(
		nil, nil,
		nil,
		container.NewHBox(widget.NewSeparator(), sb.imageInfo),
		container.NewStack(sb.statusLabel, sb.busy),
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetBusy shows an activity indicator in place of the status text.
func (sb *StatusBar) SetBusy(busy bool) {
	if busy {
		sb.statusLabel.Hide()
		sb.busy.Show()
		sb.busy.Start()
		return
	}
	sb.busy.Stop()
	sb.busy.Hide()
	sb.statusLabel.Show()
}

// SetImageInfo shows the base image's size and format.
func (sb *StatusBar) SetImageInfo(width, height int, format string) {
	sb.imageInfo.SetText(fmt.Sprintf("%dx%d %s", width, height, format))
}

func (sb *StatusBar) ClearImageInfo() {
	sb.imageInfo.SetText("No image loaded")
}

// Reset restores the initial status and clears the image info.
func (sb *StatusBar) Reset() {
	sb.SetBusy(false)
	sb.statusLabel.SetText(readyStatus)
	sb.ClearImageInfo()
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
