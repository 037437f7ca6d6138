package components

import (
	"testing"

	"ez-mark/internal/watermark"

	"github.com/stretchr/testify/assert"
)

func TestPositionLabel(t *testing.T) {
	cases := map[watermark.Position]string{
		watermark.TopLeft:     "Top Left",
		watermark.TopRight:    "Top Right",
		watermark.BottomLeft:  "Bottom Left",
		watermark.BottomRight: "Bottom Right",
	}
	for pos, want := range cases {
		assert.Equal(t, want, PositionLabel(pos))
	}
}

func TestSizeTierLabel(t *testing.T) {
	assert.Equal(t, "Large", SizeTierLabel(watermark.Large))
	assert.Equal(t, "Medium", SizeTierLabel(watermark.Medium))
	assert.Equal(t, "Small", SizeTierLabel(watermark.Small))
}

func TestPositionOptionsRoundTrip(t *testing.T) {
	labels, lookup := positionOptions()
	assert.Len(t, labels, len(watermark.Positions()))
	for i, p := range watermark.Positions() {
		assert.Equal(t, p, lookup[labels[i]])
	}
}
