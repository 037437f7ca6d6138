package models

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"ez-mark/internal/config"
	"ez-mark/internal/watermark"
)

// Screen is the page the window currently shows.
type Screen string

const (
	ScreenWelcome Screen = "welcome"
	ScreenText    Screen = "text"
	ScreenImage   Screen = "image"
)

// Mode selects which watermark workflow an operation applies to.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// Mode reports the workflow behind a screen. The welcome screen has none.
func (s Screen) Mode() (Mode, bool) {
	switch s {
	case ScreenText:
		return ModeText, true
	case ScreenImage:
		return ModeImage, true
	}
	return "", false
}

func (m Mode) Validate() error {
	switch m {
	case ModeText, ModeImage:
		return nil
	}
	return fmt.Errorf("unknown watermark mode %q", string(m))
}

// Defaults seed a new session and are restored on Reset.
type Defaults struct {
	Position watermark.Position
	Tier     watermark.SizeTier
	Margins  watermark.Margins
	FontSize float64
	Colour   color.NRGBA
}

// DefaultsFromConfig converts validated config values.
func DefaultsFromConfig(c config.DefaultsConfig) (Defaults, error) {
	pos, err := watermark.ParsePosition(c.Position)
	if err != nil {
		return Defaults{}, err
	}
	tier, err := watermark.ParseSizeTier(c.SizeTier)
	if err != nil {
		return Defaults{}, err
	}
	colour, err := watermark.ParseHexColour(c.Colour)
	if err != nil {
		return Defaults{}, err
	}
	return Defaults{
		Position: pos,
		Tier:     tier,
		Margins:  watermark.Margins{X: c.MarginX, Y: c.MarginY},
		FontSize: c.FontSize,
		Colour:   colour,
	}, nil
}

// TextJob is everything needed to render a text watermark.
type TextJob struct {
	BasePath string
	Spec     watermark.TextSpec
}

// ImageJob is everything needed to render an image watermark.
// WatermarkPath may be empty, which renders the base unchanged.
type ImageJob struct {
	BasePath      string
	WatermarkPath string
	Spec          watermark.ImageSpec
}

// State is a point-in-time copy of a Session.
type State struct {
	Screen        Screen
	TextBasePath  string
	ImageBasePath string
	WatermarkPath string
	Text          string
	Colour        color.NRGBA
	FontSize      float64
	TextPosition  watermark.Position
	ImagePosition watermark.Position
	Tier          watermark.SizeTier
	Margins       watermark.Margins
	Revision      uint64
}

// Session holds the controls of the single UI session. The text and
// image screens keep separate base images and positions. Every change
// bumps Revision so the preview loop can skip unchanged state.
type Session struct {
	mu       sync.RWMutex
	state    State
	defaults Defaults
}

func NewSession(d Defaults) *Session {
	s := &Session{defaults: d}
	s.state = s.initialState()
	return s
}

func (s *Session) initialState() State {
	return State{
		Screen:        ScreenWelcome,
		Colour:        s.defaults.Colour,
		FontSize:      s.defaults.FontSize,
		TextPosition:  s.defaults.Position,
		ImagePosition: s.defaults.Position,
		Tier:          s.defaults.Tier,
		Margins:       s.defaults.Margins,
	}
}

// update applies fn under the write lock and bumps the revision if the
// state changed.
func (s *Session) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state
	fn(&s.state)
	if s.state != before {
		s.state.Revision = before.Revision + 1
	}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Revision
}

func (s *Session) Screen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Screen
}

// ShowScreen switches screens. Returning to the welcome screen clears
// both base images and the watermark text.
func (s *Session) ShowScreen(screen Screen) error {
	switch screen {
	case ScreenWelcome, ScreenText, ScreenImage:
	default:
		return NewValidationError("screen", screen, errors.New("unknown screen"))
	}

	s.update(func(st *State) {
		st.Screen = screen
		if screen == ScreenWelcome {
			st.TextBasePath = ""
			st.ImageBasePath = ""
			st.Text = ""
		}
	})
	return nil
}

func (s *Session) SetBasePath(mode Mode, path string) error {
	if err := mode.Validate(); err != nil {
		return NewValidationError("mode", mode, err)
	}
	s.update(func(st *State) {
		if mode == ModeText {
			st.TextBasePath = path
		} else {
			st.ImageBasePath = path
		}
	})
	return nil
}

func (s *Session) BasePath(mode Mode) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mode == ModeText {
		return s.state.TextBasePath
	}
	return s.state.ImageBasePath
}

func (s *Session) SetWatermarkPath(path string) {
	s.update(func(st *State) { st.WatermarkPath = path })
}

func (s *Session) SetText(text string) {
	s.update(func(st *State) { st.Text = text })
}

func (s *Session) SetColour(c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	s.update(func(st *State) { st.Colour = n })
}

func (s *Session) SetFontSize(size float64) error {
	if size < 0 {
		return NewValidationError("font_size", size, errors.New("must not be negative"))
	}
	s.update(func(st *State) { st.FontSize = size })
	return nil
}

func (s *Session) SetPosition(mode Mode, pos watermark.Position) error {
	if err := mode.Validate(); err != nil {
		return NewValidationError("mode", mode, err)
	}
	if err := pos.Validate(); err != nil {
		return NewValidationError("position", pos, err)
	}
	s.update(func(st *State) {
		if mode == ModeText {
			st.TextPosition = pos
		} else {
			st.ImagePosition = pos
		}
	})
	return nil
}

func (s *Session) SetSizeTier(tier watermark.SizeTier) error {
	if _, err := tier.Fraction(); err != nil {
		return NewValidationError("size_tier", tier, err)
	}
	s.update(func(st *State) { st.Tier = tier })
	return nil
}

func (s *Session) SetMargins(m watermark.Margins) error {
	if m.X < 0 || m.Y < 0 {
		return NewValidationError("margins", m, errors.New("must not be negative"))
	}
	s.update(func(st *State) { st.Margins = m })
	return nil
}

// Reset restores the defaults and the welcome screen.
func (s *Session) Reset() {
	s.update(func(st *State) {
		rev := st.Revision
		*st = s.initialState()
		st.Revision = rev
	})
}

func (s *Session) TextJob() TextJob {
	st := s.Snapshot()
	return TextJob{
		BasePath: st.TextBasePath,
		Spec: watermark.TextSpec{
			Text:     st.Text,
			FontSize: st.FontSize,
			Colour:   st.Colour,
			Position: st.TextPosition,
			Margins:  st.Margins,
		},
	}
}

func (s *Session) ImageJob() ImageJob {
	st := s.Snapshot()
	return ImageJob{
		BasePath:      st.ImageBasePath,
		WatermarkPath: st.WatermarkPath,
		Spec: watermark.ImageSpec{
			Tier:     st.Tier,
			Position: st.ImagePosition,
			Margins:  st.Margins,
		},
	}
}
