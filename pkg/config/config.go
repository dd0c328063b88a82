// Package config loads optional run defaults for cmd/sim8086 from a
// sim8086.yaml file, layering cobra flags on top the way
// Manu343726-cucaracha pairs cobra with viper: the config file supplies
// defaults, flags the caller actually passed always win.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the run defaults a sim8086.yaml file may supply.
type Config struct {
	// CPU selects which clock column (8086 or 8088) run reports emphasize
	// when both are available. Valid values: "8086", "8088".
	CPU string `mapstructure:"cpu"`

	// Color enables fatih/color status lines in CLI output.
	Color bool `mapstructure:"color"`

	// OutputDir is the default directory .8086.decoded files are written
	// to when a command does not specify one explicitly.
	OutputDir string `mapstructure:"output_dir"`
}

// Defaults returns the config that applies when no sim8086.yaml exists.
func Defaults() Config {
	return Config{
		CPU:       "8086",
		Color:     true,
		OutputDir: ".",
	}
}

// Load reads sim8086.yaml from the given directory (or the current
// directory if dir is empty), falling back to Defaults() when the file
// is absent. A malformed file that does exist is still an error.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("sim8086")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	def := Defaults()
	v.SetDefault("cpu", def.CPU)
	v.SetDefault("color", def.Color)
	v.SetDefault("output_dir", def.OutputDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.CPU != "8086" && cfg.CPU != "8088" {
		return Config{}, fmt.Errorf("config: cpu must be \"8086\" or \"8088\", got %q", cfg.CPU)
	}
	return cfg, nil
}
