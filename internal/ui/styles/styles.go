// Package styles holds the fontpick color palette and the shared Lip Gloss
// styles built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. ApplyTheme replaces these in place.
var (
	TextColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	MutedColor  = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}
	LabelColor  = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	SampleColor = lipgloss.AdaptiveColor{Light: "#4A4A4A", Dark: "#B8B8B8"}

	BorderColor      = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	FocusBorderColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	ButtonFgColor      = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonBgColor      = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#2D3436"}
	ButtonFocusBgColor = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}

	ActiveFontColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	CursorColor     = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	WarningColor = lipgloss.AdaptiveColor{Light: "#E1A200", Dark: "#FECA57"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
)

var (
	TitleStyle     lipgloss.Style
	LabelStyle     lipgloss.Style
	CursorStyle    lipgloss.Style
	StatusBarStyle lipgloss.Style
	ErrorStyle     lipgloss.Style
)

func init() { buildShared() }

// buildShared rebuilds the styles above. lipgloss.Style copies colors when
// it is built, so this runs after every palette change.
func buildShared() {
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextColor)
	LabelStyle = lipgloss.NewStyle().Foreground(LabelColor)
	CursorStyle = lipgloss.NewStyle().Bold(true).Foreground(CursorColor)
	StatusBarStyle = lipgloss.NewStyle().Foreground(MutedColor).Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
}
