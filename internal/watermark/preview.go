package watermark

import (
	"image"
)

// DefaultPreviewBox is the edge of the square preview canvas.
const DefaultPreviewBox = 500

// PreviewSize fits size into a box x box square: the dominant dimension
// becomes box and the other follows the aspect ratio. Square images map
// to box x box.
func PreviewSize(size image.Point, box int) image.Point {
	w, h := size.X, size.Y
	if w <= 0 || h <= 0 || box <= 0 {
		return image.Point{}
	}

	switch {
	case w > h:
		return image.Pt(box, max(h*box/w, 1))
	case h > w:
		return image.Pt(max(w*box/h, 1), box)
	default:
		return image.Pt(box, box)
	}
}

// Preview scales img to PreviewSize(img, box).
func (r *Renderer) Preview(img image.Image, box int) image.Image {
	if img == nil {
		return nil
	}
	size := PreviewSize(img.Bounds().Size(), box)
	if size.X == 0 {
		return img
	}
	return r.resampler.Resize(img, size.X, size.Y)
}
