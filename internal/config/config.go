package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/treebbb/msurf/fractal"
)

// Config is the render configuration, merged from defaults, an optional
// config file, MSURF_ environment variables and command-line flags.
type Config struct {
	Width   int     `toml:"width" mapstructure:"width"`
	Height  int     `toml:"height" mapstructure:"height"`
	MaxIter int     `toml:"maxiter" mapstructure:"maxiter"`
	XCenter float64 `toml:"xcenter" mapstructure:"xcenter"`
	YCenter float64 `toml:"ycenter" mapstructure:"ycenter"`
	Step    float64 `toml:"step" mapstructure:"step"`

	// Bookmark, if set, replaces XCenter, YCenter, Step and MaxIter.
	Bookmark string `toml:"bookmark" mapstructure:"bookmark"`

	Palette string `toml:"palette" mapstructure:"palette"`
	Output  string `toml:"output" mapstructure:"output"`

	Render RenderConfig `toml:"render" mapstructure:"render"`
	Zoom   ZoomConfig   `toml:"zoom" mapstructure:"zoom"`
}

// RenderConfig tunes the renderer.
type RenderConfig struct {
	Workers        int     `toml:"workers" mapstructure:"workers"`
	TileSize       int     `toml:"tile_size" mapstructure:"tile_size"`
	HorizonSquared float32 `toml:"horizon_squared" mapstructure:"horizon_squared"`
	PaletteCache   int     `toml:"palette_cache" mapstructure:"palette_cache"`
}

// ZoomConfig describes a zoom sequence: Frames frames, each Factor times
// the size of the one before.
type ZoomConfig struct {
	Factor float64 `toml:"factor" mapstructure:"factor"`
	Frames int     `toml:"frames" mapstructure:"frames"`
}

// View returns the view described by c.
func (c *Config) View() (fractal.View, error) {
	if c.Bookmark != "" {
		v, err := fractal.ViewFromBookmark(c.Bookmark, c.Width, c.Height)
		if err != nil {
			return fractal.View{}, fmt.Errorf("bookmark: %w", err)
		}
		return v, nil
	}
	return fractal.ViewFromCenter(c.XCenter, c.YCenter, c.Step, c.Width, c.Height, c.MaxIter)
}

// Options returns the renderer options described by c.
func (c *Config) Options() fractal.Options {
	return fractal.Options{
		Workers:        c.Render.Workers,
		TileSize:       c.Render.TileSize,
		HorizonSquared: c.Render.HorizonSquared,
	}
}

// Validate checks c for values the renderer cannot use.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Bookmark == "" {
		if c.MaxIter <= 0 {
			return fmt.Errorf("maxiter %d must be positive", c.MaxIter)
		}
		if !(c.Step > 0) {
			return fmt.Errorf("step %g must be positive", c.Step)
		}
	}

	switch fractal.PaletteKind(strings.ToLower(c.Palette)) {
	case fractal.PaletteLog, fractal.PaletteGrey, fractal.PaletteWheel:
	default:
		return fmt.Errorf("unknown palette %q", c.Palette)
	}

	if err := c.Render.validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Zoom.validate(); err != nil {
		return fmt.Errorf("zoom: %w", err)
	}
	return nil
}

func (r *RenderConfig) validate() error {
	if r.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", r.Workers)
	}
	if r.TileSize < 0 {
		return fmt.Errorf("tile_size %d must not be negative", r.TileSize)
	}
	if !(r.HorizonSquared > 0) {
		return fmt.Errorf("horizon_squared %g must be positive", r.HorizonSquared)
	}
	return nil
}

func (z *ZoomConfig) validate() error {
	if !(z.Factor > 0) {
		return fmt.Errorf("factor %g must be positive", z.Factor)
	}
	if z.Frames <= 0 {
		return fmt.Errorf("frames %d must be positive", z.Frames)
	}
	return nil
}

// setDefaults sets the defaults: a 640x480 view of the whole set.
func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 640)
	v.SetDefault("height", 480)
	v.SetDefault("maxiter", 256)
	v.SetDefault("xcenter", -0.5)
	v.SetDefault("ycenter", 0.0)
	v.SetDefault("step", 3.0/640)
	v.SetDefault("bookmark", "")
	v.SetDefault("palette", string(fractal.PaletteLog))
	v.SetDefault("output", "msurf.png")

	v.SetDefault("render.workers", 0) // 0 means GOMAXPROCS
	v.SetDefault("render.tile_size", 0)
	v.SetDefault("render.horizon_squared", fractal.DefaultHorizonSquared)
	v.SetDefault("render.palette_cache", 16)

	v.SetDefault("zoom.factor", 0.9)
	v.SetDefault("zoom.frames", 30)
}
