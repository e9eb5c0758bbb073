package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MSURF_RENDER_WORKERS.
const EnvPrefix = "MSURF"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"width":     "width",
	"height":    "height",
	"maxiter":   "maxiter",
	"xcenter":   "xcenter",
	"ycenter":   "ycenter",
	"step":      "step",
	"bookmark":  "bookmark",
	"palette":   "palette",
	"output":    "output",
	"workers":   "render.workers",
	"tile-size": "render.tile_size",
	"horizon":   "render.horizon_squared",
	"factor":    "zoom.factor",
	"frames":    "zoom.frames",
}

// Load loads the configuration in priority order:
//  1. Defaults
//  2. The config file at path, if path is not empty
//  3. Environment variables (MSURF_ prefix)
//  4. Flags in flags that were set on the command line
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		if err := loadFile(v, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Palette = strings.ToLower(config.Palette)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func loadFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}
