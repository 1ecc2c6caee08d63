package styles

// Preset is a named set of single-valued colors applied over the built-in
// palette.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets lists the built-in themes by name. "default" has no colors of
// its own: it keeps the adaptive light and dark palette.
var Presets = map[string]Preset{
	"default": {Name: "default", Description: "Adaptive light and dark colors"},
	"catppuccin-mocha": {
		Name:        "catppuccin-mocha",
		Description: "Catppuccin Mocha",
		Colors: map[ColorToken]string{
			TokenText:          "#CDD6F4",
			TokenMuted:         "#6C7086",
			TokenLabel:         "#BAC2DE",
			TokenSample:        "#F5E0DC",
			TokenBorder:        "#585B70",
			TokenFocusBorder:   "#89B4FA",
			TokenButtonFg:      "#1E1E2E",
			TokenButtonBg:      "#9399B2",
			TokenButtonFocusBg: "#B4BEFE",
			TokenActiveFont:    "#A6E3A1",
			TokenCursor:        "#F5C2E7",
			TokenWarning:       "#F9E2AF",
			TokenError:         "#F38BA8",
		},
	},
	"dracula": {
		Name:        "dracula",
		Description: "Dracula",
		Colors: map[ColorToken]string{
			TokenText:          "#F8F8F2",
			TokenMuted:         "#6272A4",
			TokenLabel:         "#8BE9FD",
			TokenSample:        "#F8F8F2",
			TokenBorder:        "#44475A",
			TokenFocusBorder:   "#BD93F9",
			TokenButtonFg:      "#282A36",
			TokenButtonBg:      "#6272A4",
			TokenButtonFocusBg: "#FF79C6",
			TokenActiveFont:    "#50FA7B",
			TokenCursor:        "#FF79C6",
			TokenWarning:       "#FFB86C",
			TokenError:         "#FF5555",
		},
	},
	"solarized-light": {
		Name:        "solarized-light",
		Description: "Solarized for light terminals",
		Colors: map[ColorToken]string{
			TokenText:          "#586E75",
			TokenMuted:         "#93A1A1",
			TokenLabel:         "#657B83",
			TokenSample:        "#073642",
			TokenBorder:        "#93A1A1",
			TokenFocusBorder:   "#268BD2",
			TokenButtonFg:      "#FDF6E3",
			TokenButtonBg:      "#657B83",
			TokenButtonFocusBg: "#268BD2",
			TokenActiveFont:    "#859900",
			TokenCursor:        "#D33682",
			TokenWarning:       "#B58900",
			TokenError:         "#DC322F",
		},
	},
	"high-contrast": {
		Name:        "high-contrast",
		Description: "Maximum contrast",
		Colors: map[ColorToken]string{
			TokenText:          "#FFFFFF",
			TokenMuted:         "#C0C0C0",
			TokenLabel:         "#FFFFFF",
			TokenSample:        "#FFFFFF",
			TokenBorder:        "#FFFFFF",
			TokenFocusBorder:   "#00FFFF",
			TokenButtonFg:      "#000000",
			TokenButtonBg:      "#C0C0C0",
			TokenButtonFocusBg: "#00FFFF",
			TokenActiveFont:    "#00FF00",
			TokenCursor:        "#FFFF00",
			TokenWarning:       "#FFFF00",
			TokenError:         "#FF0000",
		},
	},
}
