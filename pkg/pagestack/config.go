package pagestack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for a pagestack session.
type Config struct {
	// PreviewPath is where the selected image's preview is rendered. Empty disables rendering.
	PreviewPath    string `yaml:"preview_path"`
	PreviewQuality int    `yaml:"preview_quality"`
	// MaxPixels bounds the size of any single image held in memory.
	MaxPixels    int64  `yaml:"max_pixels"`
	ScratchDir   string `yaml:"scratch_dir"`
	Creator      string `yaml:"creator"`
	ReadMetadata bool   `yaml:"read_metadata"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		PreviewQuality: 85,
		MaxPixels:      1 << 28,
		Creator:        "pagestack",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		return fmt.Errorf("preview_quality must be within 1-100, got %d", c.PreviewQuality)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels)
	}
	return nil
}
