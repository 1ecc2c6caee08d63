package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestPicker_ToggleAndSelectShareKeys(t *testing.T) {
	// Enter opens a collapsed picker and selects in an open one.
	require.Equal(t, Picker.Toggle.Keys(), Picker.Select.Keys())
}

func TestPicker_MatchesKeyMessages(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"enter toggles", tea.KeyMsg{Type: tea.KeyEnter}, Picker.Toggle},
		{"space toggles", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, Picker.Toggle},
		{"j moves down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, Picker.Down},
		{"arrow moves up", tea.KeyMsg{Type: tea.KeyUp}, Picker.Up},
		{"esc closes", tea.KeyMsg{Type: tea.KeyEsc}, Picker.Close},
		{"G jumps to bottom", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, Picker.Bottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestHelpTextDefined(t *testing.T) {
	bindings := []key.Binding{
		App.NextPicker, App.PrevPicker, App.Help, App.Logs, App.LogLevel, App.Quit,
		Picker.Up, Picker.Down, Picker.PageUp, Picker.PageDown,
		Picker.Top, Picker.Bottom, Picker.Toggle, Picker.Select, Picker.Close,
	}
	for _, b := range bindings {
		require.NotEmpty(t, b.Help().Key)
		require.NotEmpty(t, b.Help().Desc)
	}
}

func TestFullHelp_CoversShortHelp(t *testing.T) {
	var full []key.Binding
	for _, group := range Picker.FullHelp() {
		full = append(full, group...)
	}
	for _, b := range Picker.ShortHelp() {
		require.Contains(t, full, b)
	}
	require.Len(t, App.FullHelp(), 3)
}

func TestApp_QuitKeys(t *testing.T) {
	require.Equal(t, []string{"q", "ctrl+c"}, App.Quit.Keys())
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, App.Quit))
}
