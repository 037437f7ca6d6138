// Package watermark holds the placement geometry and compositing for
// text and image watermarks.
package watermark

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Errors returned when a position or size tier name is not recognised.
var (
	ErrInvalidPosition = errors.New("invalid watermark position")
	ErrInvalidSizeTier = errors.New("invalid watermark size tier")
)

// Position names the corner a watermark is anchored to.
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
)

// Positions lists the valid corners in the order the UI presents them.
func Positions() []Position {
	return []Position{TopLeft, TopRight, BottomLeft, BottomRight}
}

// ParsePosition accepts a position name in any case, ignoring
// surrounding space.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate reports whether p is one of the four corners.
func (p Position) Validate() error {
	switch p {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPosition, string(p))
}

func (p Position) left() bool { return p == TopLeft || p == BottomLeft }
func (p Position) top() bool  { return p == TopLeft || p == TopRight }

// SizeTier scales an image watermark relative to the base image width.
type SizeTier string

const (
	Large  SizeTier = "large"
	Medium SizeTier = "medium"
	Small  SizeTier = "small"
)

// SizeTiers lists the tiers from largest to smallest.
func SizeTiers() []SizeTier {
	return []SizeTier{Large, Medium, Small}
}

// ParseSizeTier accepts a tier name in any case.
func ParseSizeTier(s string) (SizeTier, error) {
	t := SizeTier(strings.ToLower(strings.TrimSpace(s)))
	if _, err := t.Fraction(); err != nil {
		return "", err
	}
	return t, nil
}

// Fraction is the share of the base width the watermark occupies.
func (t SizeTier) Fraction() (float64, error) {
	switch t {
	case Large:
		return 0.15, nil
	case Medium:
		return 0.10, nil
	case Small:
		return 0.05, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSizeTier, string(t))
}

// Margins are the distances from the anchored corner, in pixels.
type Margins struct {
	X int
	Y int
}

// Anchor returns the top-left point at which content of the given size
// is drawn so that it sits in corner pos of canvas, inset by m.
func Anchor(pos Position, canvas, content image.Point, m Margins) (image.Point, error) {
	if err := pos.Validate(); err != nil {
		return image.Point{}, err
	}

	var at image.Point
	if pos.left() {
		at.X = m.X
	} else {
		at.X = canvas.X - content.X - m.X
	}
	if pos.top() {
		at.Y = m.Y
	} else {
		at.Y = canvas.Y - content.Y - m.Y
	}
	return at, nil
}

// ScaledSize is the size an image watermark of size wm takes on a base
// image baseWidth pixels wide. Width truncates toward zero and height
// keeps the watermark's aspect ratio. Neither dimension drops below 1.
func ScaledSize(baseWidth int, wm image.Point, tier SizeTier) (image.Point, error) {
	fraction, err := tier.Fraction()
	if err != nil {
		return image.Point{}, err
	}
	if wm.X <= 0 || wm.Y <= 0 {
		return image.Point{}, fmt.Errorf("watermark has empty bounds %v", wm)
	}

	ratio := float64(wm.Y) / float64(wm.X)
	width := int(float64(baseWidth) * fraction)
	height := int(float64(width) * ratio)

	return image.Pt(max(width, 1), max(height, 1)), nil
}
