package styles

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// rebuilders rebuild styles owned by other packages after a palette change.
var rebuilders []func()

// RegisterStyleRebuilder runs fn after every ApplyTheme.
func RegisterStyleRebuilder(fn func()) {
	rebuilders = append(rebuilders, fn)
}

// ThemeConfig is the theme section of the config file.
type ThemeConfig struct {
	Preset string
	Colors map[string]string
}

// Resolve returns the color for every token the theme sets. Tokens left
// out keep their built-in adaptive value. All invalid overrides are
// reported together.
func Resolve(cfg ThemeConfig) (map[ColorToken]string, error) {
	name := cfg.Preset
	if name == "" {
		name = "default"
	}
	preset, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme preset: %s", cfg.Preset)
	}

	colors := maps.Clone(preset.Colors)
	if colors == nil {
		colors = make(map[ColorToken]string, len(cfg.Colors))
	}

	var errs []error
	for _, key := range slices.Sorted(maps.Keys(cfg.Colors)) {
		value := cfg.Colors[key]
		switch {
		case !knownToken(ColorToken(key)):
			errs = append(errs, fmt.Errorf("unknown color token: %s", key))
		case !hexColor.MatchString(value):
			errs = append(errs, fmt.Errorf("invalid hex color for %s: %q", key, value))
		default:
			colors[ColorToken(key)] = value
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return colors, nil
}

// ApplyTheme resets the palette, applies cfg and rebuilds every style. On
// error the palette is left untouched.
func ApplyTheme(cfg ThemeConfig) error {
	colors, err := Resolve(cfg)
	if err != nil {
		return err
	}
	for _, e := range palette {
		if c, ok := colors[e.token]; ok {
			*e.color = lipgloss.AdaptiveColor{Light: c, Dark: c}
		} else {
			*e.color = builtin[e.token]
		}
	}
	buildShared()
	for _, fn := range rebuilders {
		fn()
	}
	return nil
}
