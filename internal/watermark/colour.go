package watermark

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColour is the coral red the app starts with.
const DefaultColour = "#FF6B6B"

// ParseHexColour accepts #RGB, #RRGGBB and #RRGGBBAA, with or without
// the leading hash.
func ParseHexColour(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	alpha := uint8(0xff)
	switch len(hex) {
	case 3, 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// HexColour formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func HexColour(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	rgb := strings.ToUpper(colorful.Color{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
	}.Hex())
	if n.A == 0xff {
		return rgb
	}
	return fmt.Sprintf("%s%02X", rgb, n.A)
}
