package styles

import "github.com/charmbracelet/lipgloss"

// ColorToken is the config key of one palette entry.
type ColorToken string

const (
	TokenText   ColorToken = "text.primary"
	TokenMuted  ColorToken = "text.muted"
	TokenLabel  ColorToken = "text.label"
	TokenSample ColorToken = "text.sample"

	TokenBorder      ColorToken = "border.default"
	TokenFocusBorder ColorToken = "border.focus"

	TokenButtonFg      ColorToken = "button.fg"
	TokenButtonBg      ColorToken = "button.bg"
	TokenButtonFocusBg ColorToken = "button.focus"

	TokenActiveFont ColorToken = "list.active"
	TokenCursor     ColorToken = "list.cursor"

	TokenWarning ColorToken = "status.warning"
	TokenError   ColorToken = "status.error"
)

type entry struct {
	token ColorToken
	color *lipgloss.AdaptiveColor
}

// palette binds each token to the variable it controls, in display order.
var palette = []entry{
	{TokenText, &TextColor},
	{TokenMuted, &MutedColor},
	{TokenLabel, &LabelColor},
	{TokenSample, &SampleColor},
	{TokenBorder, &BorderColor},
	{TokenFocusBorder, &FocusBorderColor},
	{TokenButtonFg, &ButtonFgColor},
	{TokenButtonBg, &ButtonBgColor},
	{TokenButtonFocusBg, &ButtonFocusBgColor},
	{TokenActiveFont, &ActiveFontColor},
	{TokenCursor, &CursorColor},
	{TokenWarning, &WarningColor},
	{TokenError, &ErrorColor},
}

// builtin is the palette as compiled in, kept so ApplyTheme can start over.
var builtin = snapshot()

func snapshot() map[ColorToken]lipgloss.AdaptiveColor {
	out := make(map[ColorToken]lipgloss.AdaptiveColor, len(palette))
	for _, e := range palette {
		out[e.token] = *e.color
	}
	return out
}

// AllTokens returns every themeable token.
func AllTokens() []ColorToken {
	out := make([]ColorToken, len(palette))
	for i, e := range palette {
		out[i] = e.token
	}
	return out
}

func knownToken(t ColorToken) bool {
	_, ok := builtin[t]
	return ok
}
