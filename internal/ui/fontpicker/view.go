package fontpicker

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/fontpick/internal/ui/styles"
)

const (
	activeMarker = "✓"
	ellipsis     = "…"
)

var (
	buttonStyle        lipgloss.Style
	buttonFocusedStyle lipgloss.Style
	listStyle          lipgloss.Style
	listFocusedStyle   lipgloss.Style
	activeRowStyle     lipgloss.Style
	mutedStyle         lipgloss.Style
	errorStyle         lipgloss.Style
)

func init() {
	buildStyles()
	styles.RegisterStyleRebuilder(buildStyles)
}

// buildStyles derives the picker styles from the current theme colors.
func buildStyles() {
	buttonStyle = lipgloss.NewStyle().
		Foreground(styles.ButtonFgColor).
		Background(styles.ButtonBgColor)
	buttonFocusedStyle = lipgloss.NewStyle().
		Foreground(styles.ButtonFgColor).
		Background(styles.ButtonFocusBgColor).
		Bold(true)
	listStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderColor)
	listFocusedStyle = listStyle.
		BorderForeground(styles.FocusBorderColor)
	activeRowStyle = lipgloss.NewStyle().Foreground(styles.ActiveFontColor)
	mutedStyle = lipgloss.NewStyle().Foreground(styles.MutedColor)
	errorStyle = lipgloss.NewStyle().Foreground(styles.ErrorColor)
}

// StatusIcon is the glyph shown on the toggle button.
func StatusIcon(s LoadingStatus, e Expansion) string {
	switch s {
	case StatusLoading:
		return "◌"
	case StatusError:
		return "!"
	}
	if e == Expanded {
		return "▴"
	}
	return "▾"
}

// View renders the toggle button, any error and, when open, the list.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.ctrl.Button().Mark(m.renderButton()))

	if msg := m.statusMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(truncate.StringWithTail(msg, uint(m.width), ellipsis))) //nolint:gosec // width is positive
	}

	if m.ctrl.Expanded() {
		b.WriteString("\n")
		switch {
		case m.ctrl.Status() == StatusLoading:
			b.WriteString(mutedStyle.Render("Loading fonts" + ellipsis))
		case len(m.ctrl.Fonts()) == 0:
			b.WriteString(mutedStyle.Render("No fonts"))
		default:
			style := listStyle
			if m.focused {
				style = listFocusedStyle
			}
			b.WriteString(m.ctrl.List().Mark(style.Render(m.viewport.View())))
		}
	}

	return m.ctrl.Root().Mark(b.String())
}

func (m Model) statusMessage() string {
	if m.ctrl.Status() != StatusError {
		return ""
	}
	if msg := m.ctrl.Err(); msg != "" {
		return msg
	}
	return LoadErrorTitle
}

func (m Model) renderButton() string {
	icon := StatusIcon(m.ctrl.Status(), m.ctrl.Expansion())
	// one cell of padding on each side plus the icon and its gap
	room := max(m.width-4, 1)
	label := truncate.StringWithTail(m.ctrl.ActiveFamily(), uint(room), ellipsis) //nolint:gosec // room is positive
	gap := max(room-runewidth.StringWidth(label), 0)
	content := " " + label + strings.Repeat(" ", gap) + " " + icon + " "

	if m.focused {
		return buttonFocusedStyle.Render(content)
	}
	return buttonStyle.Render(content)
}

// renderRows renders one line per font for the viewport.
func (m Model) renderRows() string {
	fonts := m.ctrl.Fonts()
	if len(fonts) == 0 {
		return ""
	}
	width := max(m.innerWidth(), 6)
	active := m.ctrl.ActiveFamily()

	rows := make([]string, len(fonts))
	for i, f := range fonts {
		indicator := " "
		if m.ctrl.Expanded() && i == m.cursor {
			indicator = styles.CursorStyle.Render(">")
		}
		marker := " "
		if f.Family == active {
			marker = activeRowStyle.Render(activeMarker)
		}

		// indicator, space, label, space, marker
		room := width - 4
		label := ansi.Truncate(f.Family, room, ellipsis)
		pad := strings.Repeat(" ", max(room-runewidth.StringWidth(label), 0))
		if preview, ok := m.ctrl.Preview(f.Family); ok {
			label = preview.Render(label)
		} else if f.Family == active {
			label = activeRowStyle.Render(label)
		}

		row := indicator + " " + label + pad + " " + marker
		rows[i] = m.ctrl.ItemNode(i).Mark(row)
	}
	return strings.Join(rows, "\n")
}
