// Package plotpage renders merged trend tables as interactive HTML charts.
package plotpage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTheme is returned for an unrecognized theme name.
var ErrUnknownTheme = errors.New("unknown chart theme")

// Theme is a color theme for charts.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ParseTheme validates a theme name. Matching is case-insensitive.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
	}
}

// ThemeConfig holds the colors a chart is drawn with.
type ThemeConfig struct {
	Background string
	Grid       string
	Axis       string
	Text       string
	TextMuted  string
	// Series colors, cycled when there are more metrics than entries.
	Palette []string
}

// GetThemeConfig returns the configuration for theme, falling back to light.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Grid:       "#e7e5e4", // stone-200.
	Axis:       "#a8a29e", // stone-400.
	Text:       "#44403c", // stone-700.
	TextMuted:  "#78716c", // stone-500.
	Palette: []string{
		"#a16207", // amber-700.
		"#0369a1", // sky-700.
		"#4d7c0f", // lime-700.
		"#7c3aed", // violet-600.
		"#be185d", // pink-700.
		"#0891b2", // cyan-600.
		"#c2410c", // orange-700.
		"#4338ca", // indigo-700.
	},
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Grid:       "#44403c", // stone-700.
	Axis:       "#57534e", // stone-600.
	Text:       "#d6d3d1", // stone-300.
	TextMuted:  "#a8a29e", // stone-400.
	Palette: []string{
		"#fbbf24", // amber-400.
		"#38bdf8", // sky-400.
		"#a3e635", // lime-400.
		"#a78bfa", // violet-400.
		"#f472b6", // pink-400.
		"#22d3ee", // cyan-400.
		"#fb923c", // orange-400.
		"#818cf8", // indigo-400.
	},
}
