package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/bloxdschem/api"
	"github.com/voxelsplace/bloxdschem/schem"
)

// ConvertConfig is the YAML conversion profile accepted by img2schem.
type ConvertConfig struct {
	Orientation string `yaml:"orientation"`
	Label       string `yaml:"label"`
	Height      int    `yaml:"height"`
	MaxWidth    int    `yaml:"max_width"`
	MaxHeight   int    `yaml:"max_height"`
}

func DefaultConfig() ConvertConfig {
	return ConvertConfig{Orientation: schem.Wall.String(), Label: schem.DefaultLabel}
}

// LoadConfig reads a profile from path. Fields left out keep their defaults.
func LoadConfig(path string) (ConvertConfig, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.Options(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Options validates the profile and turns it into conversion options.
func (c ConvertConfig) Options() (api.ConvertOptions, error) {
	opts := api.DefaultConvertOptions()
	if c.Orientation != "" {
		o, err := schem.ParseOrientation(c.Orientation)
		if err != nil {
			return opts, err
		}
		opts.Orientation = o
	}
	if c.Label != "" {
		opts.Label = c.Label
	}
	if c.Height < 0 || c.MaxWidth < 0 || c.MaxHeight < 0 {
		return opts, fmt.Errorf("height, max_width and max_height must not be negative")
	}
	opts.Height = c.Height
	opts.MaxWidth = c.MaxWidth
	opts.MaxHeight = c.MaxHeight
	return opts, nil
}
