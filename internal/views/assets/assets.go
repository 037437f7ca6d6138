// Package assets holds the images bundled into the binary.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"
)

//go:embed logo.png
var logoPNG []byte

// Logo is the EZ Mark mark, used as the window icon and on the welcome
// screen.
var Logo fyne.Resource = fyne.NewStaticResource("ez-logo.png", logoPNG)

// LogoImage decodes the bundled logo.
func LogoImage() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(logoPNG))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	return img, nil
}
