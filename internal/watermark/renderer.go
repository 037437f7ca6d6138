package watermark

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"ez-mark/internal/resample"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextSpec describes a text watermark. Colour defaults to DefaultColour.
type TextSpec struct {
	Text     string
	FontSize float64
	Colour   color.Color
	Position Position
	Margins  Margins
}

// ImageSpec describes how an image watermark is scaled and placed.
type ImageSpec struct {
	Tier     SizeTier
	Position Position
	Margins  Margins
}

// Renderer composites watermarks onto base images. It is safe for
// concurrent use; font faces are cached per size and drawing with them
// is serialised.
type Renderer struct {
	resampler resample.Resampler
	font      *opentype.Font
	fontName  string

	mu    sync.Mutex
	faces map[float64]font.Face
}

// Option configures a Renderer.
type Option func(*rendererOptions) error

type rendererOptions struct {
	resampler resample.Resampler
	fontData  []byte
	fontName  string
}

// WithResampler sets the backend used to scale watermarks and previews.
func WithResampler(r resample.Resampler) Option {
	return func(o *rendererOptions) error {
		if r == nil {
			return fmt.Errorf("nil resampler")
		}
		o.resampler = r
		return nil
	}
}

// WithFontFile replaces the built-in Go Regular face with a TTF or OTF
// file from disk.
func WithFontFile(path string) Option {
	return func(o *rendererOptions) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read font file: %w", err)
		}
		o.fontData = data
		o.fontName = path
		return nil
	}
}

// WithFontData uses an in-memory TTF or OTF face.
func WithFontData(name string, data []byte) Option {
	return func(o *rendererOptions) error {
		o.fontData = data
		o.fontName = name
		return nil
	}
}

// NewRenderer creates a renderer using the Go Regular face and the
// default resampler unless options say otherwise.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := &rendererOptions{
		fontData: goregular.TTF,
		fontName: "Go Regular",
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.resampler == nil {
		o.resampler = resample.Default()
	}

	f, err := opentype.Parse(o.fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", o.fontName, err)
	}

	return &Renderer{
		resampler: o.resampler,
		font:      f,
		fontName:  o.fontName,
		faces:     make(map[float64]font.Face),
	}, nil
}

// FontName names the face text watermarks are drawn with.
func (r *Renderer) FontName() string {
	return r.fontName
}

func (r *Renderer) Resampler() resample.Resampler {
	return r.resampler
}

// face must be called with r.mu held.
func (r *Renderer) face(size float64) (font.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}

	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face at %.1fpt: %w", size, err)
	}
	r.faces[size] = f
	return f, nil
}

// MeasureText returns the pixel size of text at the given font size.
func (r *Renderer) MeasureText(text string, size float64) (image.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	face, err := r.face(size)
	if err != nil {
		return image.Point{}, err
	}
	return TextSize(face, text), nil
}

// TextSize is the advance width of text and the face's line height
// (ascent plus descent).
func TextSize(face font.Face, text string) image.Point {
	m := face.Metrics()
	return image.Pt(
		font.MeasureString(face, text).Ceil(),
		(m.Ascent + m.Descent).Ceil(),
	)
}

// PlaceText draws spec.Text onto a copy of base. Empty text or a font
// size below one point returns base itself.
func (r *Renderer) PlaceText(base image.Image, spec TextSpec) (image.Image, error) {
	if base == nil || spec.Text == "" || spec.FontSize < 1 {
		return base, nil
	}
	if err := spec.Position.Validate(); err != nil {
		return nil, err
	}

	src := spec.Colour
	if src == nil {
		src, _ = ParseHexColour(DefaultColour)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	face, err := r.face(spec.FontSize)
	if err != nil {
		return nil, err
	}

	size := TextSize(face, spec.Text)
	at, err := Anchor(spec.Position, base.Bounds().Size(), size, spec.Margins)
	if err != nil {
		return nil, err
	}

	dst := imaging.Clone(base)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(src),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(at.X), Y: fixed.I(at.Y) + face.Metrics().Ascent},
	}
	d.DrawString(spec.Text)

	return dst, nil
}

// PlaceImage scales wm by spec.Tier and alpha-composites it onto a copy
// of base. A nil watermark returns base itself.
func (r *Renderer) PlaceImage(base, wm image.Image, spec ImageSpec) (image.Image, error) {
	if base == nil || wm == nil {
		return base, nil
	}

	size, err := ScaledSize(base.Bounds().Dx(), wm.Bounds().Size(), spec.Tier)
	if err != nil {
		return nil, err
	}

	at, err := Anchor(spec.Position, base.Bounds().Size(), size, spec.Margins)
	if err != nil {
		return nil, err
	}

	scaled := r.resampler.Resize(wm, size.X, size.Y)
	return imaging.Overlay(base, scaled, at, 1.0), nil
}
