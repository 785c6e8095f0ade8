package config

import (
	"fmt"
	"os"

	apperrors "graph-explorer/backend/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Theme overrides the built-in styling tables. Every field is optional; zero
// values leave the corresponding default in place.
//
//	type_colors:
//	  Publication: "#4D8DDA"
//	palette: ["#FFDF81", "#56C7E4"]
//	fallback_start: 0
//	sizes:
//	  Publication: 35
//	default_size: 28
//	relationship:
//	  width: 2
//	  color: "#666666"
//	  caption: CONNECTED
type Theme struct {
	TypeColors    map[string]string  `yaml:"type_colors"`
	Palette       []string           `yaml:"palette"`
	FallbackStart *int               `yaml:"fallback_start"`
	Sizes         map[string]float64 `yaml:"sizes"`
	DefaultSize   float64            `yaml:"default_size"`
	Relationship  RelationshipTheme  `yaml:"relationship"`
}

// RelationshipTheme holds the fixed relationship styling.
type RelationshipTheme struct {
	Width   float64 `yaml:"width"`
	Color   string  `yaml:"color"`
	Caption string  `yaml:"caption"`
}

// LoadTheme reads a YAML theme file. An empty path yields an empty theme.
func LoadTheme(path string) (*Theme, error) {
	theme := &Theme{}
	if path == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}
	if err := yaml.Unmarshal(data, theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	if theme.FallbackStart != nil && *theme.FallbackStart < 0 {
		return nil, apperrors.NewConfigValidationFailed("THEME_FILE", "fallback_start must not be negative")
	}
	for _, c := range theme.Palette {
		if c == "" {
			return nil, apperrors.NewConfigValidationFailed("THEME_FILE", "palette entries must not be empty")
		}
	}
	return theme, nil
}
