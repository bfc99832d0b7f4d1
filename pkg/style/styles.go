// Package style defines the visual styling for dotkeep's terminal output.
// Styles use semantic names and adaptive colors loaded from an embedded YAML
// definition, so theming stays consistent across commands.
package style

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

type config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// registry maps semantic names to lipgloss styles
var registry map[string]lipgloss.Style

func init() {
	if err := loadStyles(embeddedStyles); err != nil {
		panic(fmt.Sprintf("invalid embedded styles: %v", err))
	}
}

func loadStyles(data []byte) error {
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry = make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		s := lipgloss.NewStyle().Bold(def.Bold).Italic(def.Italic)
		if color, ok := colors[def.Foreground]; ok {
			s = s.Foreground(color)
		}
		registry[name] = s
	}
	return nil
}

// Get returns the style registered under the given semantic name, or a
// zero style when the name is unknown.
func Get(name string) lipgloss.Style {
	if s, ok := registry[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
