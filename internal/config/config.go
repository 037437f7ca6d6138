// Package config loads application settings from built-in defaults, an
// optional TOML file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ez-mark/internal/watermark"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvConfigPath names the variable holding the TOML file path.
const EnvConfigPath = "EZMARK_CONFIG"

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Defaults DefaultsConfig `toml:"defaults"`
	Preview  PreviewConfig  `toml:"preview"`
	Output   OutputConfig   `toml:"output"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// DefaultsConfig seeds the controls of a fresh session.
type DefaultsConfig struct {
	Position string  `toml:"position"`
	MarginX  int     `toml:"margin_x"`
	MarginY  int     `toml:"margin_y"`
	FontSize float64 `toml:"font_size"`
	Colour   string  `toml:"colour"`
	SizeTier string  `toml:"size_tier"`
	FontPath string  `toml:"font_path"`
}

type PreviewConfig struct {
	Box        int      `toml:"box"`
	Interval   Duration `toml:"interval"`
	ScratchDir string   `toml:"scratch_dir"`
	Resampler  string   `toml:"resampler"`
	CacheSize  int      `toml:"cache_size"`
}

type OutputConfig struct {
	JPEGQuality  int     `toml:"jpeg_quality"`
	WebPQuality  float32 `toml:"webp_quality"`
	WebPLossless bool    `toml:"webp_lossless"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration decodes TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  500,
			Height: 780,
		},
		Defaults: DefaultsConfig{
			Position: string(watermark.TopLeft),
			MarginX:  15,
			MarginY:  15,
			FontSize: 30,
			Colour:   watermark.DefaultColour,
			SizeTier: string(watermark.Large),
		},
		Preview: PreviewConfig{
			Box:        watermark.DefaultPreviewBox,
			Interval:   Duration{100 * time.Millisecond},
			ScratchDir: filepath.Join(os.TempDir(), "ezmark"),
			Resampler:  "lanczos",
			CacheSize:  4,
		},
		Output: OutputConfig{
			JPEGQuality: 95,
			WebPQuality: 90,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration. path may be empty, in which case the
// EZMARK_CONFIG variable is consulted; a missing file at the default
// location is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setString("EZMARK_POSITION", &c.Defaults.Position)
	setInt("EZMARK_MARGIN_X", &c.Defaults.MarginX)
	setInt("EZMARK_MARGIN_Y", &c.Defaults.MarginY)
	setString("EZMARK_COLOUR", &c.Defaults.Colour)
	setString("EZMARK_SIZE_TIER", &c.Defaults.SizeTier)
	setString("EZMARK_FONT", &c.Defaults.FontPath)
	if v := os.Getenv("EZMARK_FONT_SIZE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("EZMARK_FONT_SIZE: %w", err))
		} else {
			c.Defaults.FontSize = f
		}
	}

	setInt("EZMARK_PREVIEW_BOX", &c.Preview.Box)
	setString("EZMARK_SCRATCH_DIR", &c.Preview.ScratchDir)
	setString("EZMARK_RESAMPLER", &c.Preview.Resampler)
	setInt("EZMARK_CACHE_SIZE", &c.Preview.CacheSize)
	if v := os.Getenv("EZMARK_PREVIEW_INTERVAL"); v != "" {
		if err := c.Preview.Interval.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("EZMARK_PREVIEW_INTERVAL: %w", err))
		}
	}

	setInt("EZMARK_JPEG_QUALITY", &c.Output.JPEGQuality)
	if v := os.Getenv("EZMARK_WEBP_QUALITY"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("EZMARK_WEBP_QUALITY: %w", err))
		} else {
			c.Output.WebPQuality = float32(f)
		}
	}
	if v := os.Getenv("EZMARK_WEBP_LOSSLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EZMARK_WEBP_LOSSLESS: %w", err))
		} else {
			c.Output.WebPLossless = b
		}
	}

	setString("LOG_LEVEL", &c.Log.Level)
	if os.Getenv("DEBUG") == "1" {
		c.Log.Level = "debug"
	}
	setString("EZMARK_LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := watermark.ParsePosition(c.Defaults.Position); err != nil {
		return fmt.Errorf("defaults.position: %w", err)
	}
	if _, err := watermark.ParseSizeTier(c.Defaults.SizeTier); err != nil {
		return fmt.Errorf("defaults.size_tier: %w", err)
	}
	if _, err := watermark.ParseHexColour(c.Defaults.Colour); err != nil {
		return fmt.Errorf("defaults.colour: %w", err)
	}
	if c.Defaults.MarginX < 0 || c.Defaults.MarginY < 0 {
		return fmt.Errorf("defaults margins must not be negative")
	}
	if c.Defaults.FontSize < 0 || c.Defaults.FontSize > 500 {
		return fmt.Errorf("defaults.font_size must be between 0 and 500")
	}
	if c.Preview.Box < 16 {
		return fmt.Errorf("preview.box must be at least 16")
	}
	if c.Preview.Interval.Duration < 10*time.Millisecond {
		return fmt.Errorf("preview.interval must be at least 10ms")
	}
	if strings.TrimSpace(c.Preview.ScratchDir) == "" {
		return fmt.Errorf("preview.scratch_dir cannot be empty")
	}
	if c.Preview.CacheSize < 1 {
		return fmt.Errorf("preview.cache_size must be positive")
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}
	if c.Output.WebPQuality < 0 || c.Output.WebPQuality > 100 {
		return fmt.Errorf("output.webp_quality must be between 0 and 100")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	return nil
}
