// Package logpanel renders the most recent debug log entries in a panel
// docked below the pickers.
package logpanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/ui/styles"
)

const (
	defaultHeight = 6
	minWidth      = 20
	maxEntries    = 200
)

// Model is the log panel state.
type Model struct {
	visible  bool
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden panel showing every level.
func New() Model {
	m := Model{minLevel: log.LevelDebug, width: minWidth, height: defaultHeight}
	m.viewport = viewport.New(m.width-2, m.height)
	return m
}

// Visible reports whether the panel is shown.
func (m Model) Visible() bool { return m.visible }

// MinLevel returns the lowest level shown.
func (m Model) MinLevel() log.Level { return m.minLevel }

// Toggle shows or hides the panel.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	return m.Refresh()
}

// CycleLevel raises the filter one level, wrapping from ERROR to DEBUG.
func (m Model) CycleLevel() Model {
	m.minLevel++
	if m.minLevel > log.LevelError {
		m.minLevel = log.LevelDebug
	}
	return m.Refresh()
}

// SetSize sets the panel width and the number of entry rows.
func (m Model) SetSize(width, height int) Model {
	m.width = max(width, minWidth)
	if height > 0 {
		m.height = height
	}
	return m.Refresh()
}

// Refresh reloads entries from the logger and scrolls to the newest.
func (m Model) Refresh() Model {
	if !m.visible {
		return m
	}
	m.viewport.Width = m.width - 2
	m.viewport.Height = m.height
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
	return m
}

// Entries returns the buffered entries at or above the current level.
func (m Model) Entries() []log.Entry {
	var out []log.Entry
	for _, entry := range log.Recent(maxEntries) {
		if entry.Level >= m.minLevel {
			out = append(out, entry)
		}
	}
	return out
}

func (m Model) content() string {
	entries := m.Entries()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(styles.MutedColor).Italic(true).Render("No logs to display")
	}
	width := m.viewport.Width
	lines := make([]string, len(entries))
	for i, entry := range entries {
		line := entry.String()
		if ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		lines[i] = entryStyle(entry.Level).Render(line)
	}
	return strings.Join(lines, "\n")
}

// View renders the panel, or nothing when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.TextColor).
		Render("Logs ≥ " + m.minLevel.String())
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderColor).
		Width(m.width - 2)
	return title + "\n" + box.Render(m.viewport.View())
}

func entryStyle(level log.Level) lipgloss.Style {
	switch level {
	case log.LevelError:
		return lipgloss.NewStyle().Foreground(styles.ErrorColor)
	case log.LevelWarn:
		return lipgloss.NewStyle().Foreground(styles.WarningColor)
	case log.LevelInfo:
		return lipgloss.NewStyle().Foreground(styles.TextColor)
	}
	return lipgloss.NewStyle().Foreground(styles.MutedColor)
}
