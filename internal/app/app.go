// Package app contains the root application model: a page of font pickers
// with a sample line rendered in each picker's active font.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/truncate"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/config"
	"github.com/zjrosen/fontpick/internal/keys"
	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/pubsub"
	"github.com/zjrosen/fontpick/internal/ui/fontpicker"
	"github.com/zjrosen/fontpick/internal/ui/logpanel"
	"github.com/zjrosen/fontpick/internal/ui/pointer"
	"github.com/zjrosen/fontpick/internal/ui/styles"
	"github.com/zjrosen/fontpick/internal/ui/uitree"
	"github.com/zjrosen/fontpick/internal/watcher"
)

const (
	rootID       = "fontpick"
	maxPickerW   = 40
	minPickerW   = 12
	sampleIndent = 2
)

// Services are the dependencies built by the command before the program
// starts.
type Services struct {
	Config *config.Config
	Source catalog.Source
	Tracer trace.Tracer

	// ConfigPath is the file the config was read from, empty when none.
	ConfigPath string
}

// slot is one picker on the page.
type slot struct {
	entry    config.PickerEntry
	manager  *catalog.Manager
	picker   fontpicker.Model
	sample   *uitree.Node
	listener *pubsub.Listener[catalog.Notice]

	// value is the host-owned family of a controlled picker.
	value string
}

// Model is the root application state.
type Model struct {
	cfg config.Config

	root       *uitree.Node
	dispatcher *pointer.Dispatcher
	slots      []*slot
	focus      int

	keys     keys.AppKeyMap
	help     help.Model
	showHelp bool
	logs     logpanel.Model

	status string
	err    string

	logListener *log.LogListener
	ctx         context.Context
	cancel      context.CancelFunc

	// Config file watcher for live theme reload
	configPath    string
	watcher       *watcher.Watcher
	watchListener *pubsub.Listener[watcher.Change]

	width  int
	height int
}

// New builds one picker per configured entry. Every picker gets its own
// catalog manager; all of them share one pointer dispatcher so a click
// anywhere collapses the open lists.
func New(svc Services) Model {
	cfg := config.Defaults()
	if svc.Config != nil {
		cfg = *svc.Config
	}
	entries := cfg.Pickers
	if len(entries) == 0 {
		entries = []config.PickerEntry{{}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		cfg:         cfg,
		root:        uitree.NewRoot(rootID),
		dispatcher:  pointer.NewDispatcher(),
		keys:        keys.App,
		help:        help.New(),
		logs:        logpanel.New(),
		logListener: log.NewListener(ctx),
		ctx:         ctx,
		cancel:      cancel,
		configPath:  svc.ConfigPath,
	}

	if cfg.WatchConfig && svc.ConfigPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(svc.ConfigPath))
		if err == nil {
			err = w.Start()
			if err != nil {
				_ = w.Stop()
			}
		}
		if err != nil {
			log.Warn(log.CatConfig, "Config watch disabled", "path", svc.ConfigPath, "error", err)
		} else {
			m.watcher = w
			m.watchListener = pubsub.Listen(ctx, w.Broker())
		}
	}

	var opts []catalog.Option
	if svc.Source != nil {
		opts = append(opts, catalog.WithSource(svc.Source))
	}
	if svc.Tracer != nil {
		opts = append(opts, catalog.WithTracer(svc.Tracer))
	}

	for i, entry := range entries {
		active := cfg.ActiveFontFor(entry)
		catOpts := cfg.CatalogOptions(entry)
		mgr := catalog.New(cfg.APIKey, active, catOpts, nil, opts...)

		ctrl := fontpicker.New(fontpicker.Config{
			Catalog:      mgr,
			ActiveFamily: active,
			Controlled:   entry.Controlled,
			Sort:         catOpts.Sort,
			Limit:        catOpts.Limit,
			Throttle:     cfg.Picker.Throttle,
			Pointer:      m.dispatcher,
		})
		m.root.Adopt(ctrl.Root())

		s := &slot{
			entry:    entry,
			manager:  mgr,
			picker:   fontpicker.NewModel(ctrl).SetListHeight(cfg.Picker.ListHeight).SetFocused(i == 0),
			sample:   m.root.Append(fmt.Sprintf("sample-%d", i), cfg.SampleText),
			listener: pubsub.Listen(ctx, mgr.Broker()),
			value:    active,
		}
		m.slots = append(m.slots, s)
	}
	return m
}

// Init loads every catalog and starts the event listeners.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, 2*len(m.slots)+2)
	for _, s := range m.slots {
		cmds = append(cmds, s.picker.Controller().InitCmd(m.ctx), s.listener.Next())
	}
	cmds = append(cmds, m.logListener.Next(), m.watchListener.Next())
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.logs = m.logs.SetSize(msg.Width, 0)
		for _, s := range m.slots {
			s.picker = s.picker.SetWidth(m.pickerWidth())
		}

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m, cmd = m.handleMouse(msg)

	case fontpicker.FontChangedMsg:
		m.handleFontChanged(msg)

	case fontpicker.SelectionErrorMsg:
		m.err = msg.Err.Error()

	case log.LogEvent:
		if msg.Payload.Level >= log.LevelWarn {
			m.status = msg.Payload.Message
		}
		m.logs = m.logs.Refresh()
		cmd = m.logListener.Next()

	case pubsub.Event[catalog.Notice]:
		cmd = m.handleNotice(msg)

	case pubsub.Event[watcher.Change]:
		cmd = m.handleConfigChange(msg)

	default:
		cmd = m.broadcast(msg)
	}

	m.syncControlled()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.logs = m.logs.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.LogLevel):
		m.logs = m.logs.CycleLevel()
		return m, nil
	case key.Matches(msg, m.keys.NextPicker):
		return m.focusPicker(m.focus + 1), nil
	case key.Matches(msg, m.keys.PrevPicker):
		return m.focusPicker(m.focus - 1), nil
	}

	if len(m.slots) == 0 {
		return m, nil
	}
	m.err = ""
	s := m.slots[m.focus]
	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	return m, cmd
}

// focusPicker moves key focus, wrapping at both ends. The picker losing
// focus collapses.
func (m Model) focusPicker(i int) Model {
	n := len(m.slots)
	if n == 0 {
		return m
	}
	i = ((i % n) + n) % n
	if i == m.focus {
		return m
	}
	prev := m.slots[m.focus]
	prev.picker.Controller().Collapse()
	prev.picker = prev.picker.SetFocused(false)
	m.focus = i
	m.slots[i].picker = m.slots[i].picker.SetFocused(true)
	return m
}

// handleMouse resolves a left click to the deepest node under the pointer,
// lets each picker act on it, then dispatches it so open lists whose
// subtree does not contain the target collapse.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return m, m.broadcast(msg)
	}

	target := m.root.Resolve(msg)
	m.err = ""
	cmds := make([]tea.Cmd, 0, len(m.slots))
	for i, s := range m.slots {
		if s.picker.Controller().Root().IsAncestorOf(target) {
			m = m.focusPicker(i)
		}
		var cmd tea.Cmd
		s.picker, cmd = s.picker.Activate(target)
		cmds = append(cmds, cmd)
	}
	m.dispatcher.Dispatch(target)
	return m, tea.Batch(cmds...)
}

// broadcast forwards msg to every picker. Pickers drop messages carrying
// another instance ID.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.slots))
	for _, s := range m.slots {
		var cmd tea.Cmd
		s.picker, cmd = s.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// handleFontChanged records a controlled picker's selection as the host
// value, which syncControlled then feeds back.
func (m *Model) handleFontChanged(msg fontpicker.FontChangedMsg) {
	s := m.slotFor(msg.InstanceID)
	if s == nil {
		return
	}
	m.status = fmt.Sprintf("Active font: %s", msg.Font.Family)
	if s.entry.Controlled {
		s.value = msg.Font.Family
	}
}

func (m *Model) handleNotice(ev pubsub.Event[catalog.Notice]) tea.Cmd {
	var s *slot
	for _, candidate := range m.slots {
		if candidate.entry.ID == ev.Payload.PickerID {
			s = candidate
			break
		}
	}
	if s == nil {
		return nil
	}
	if ev.Kind == pubsub.PreviewsDone {
		log.Debug(log.CatPreview, "Previews ready", "picker", s.entry.ID, "count", ev.Payload.Previews)
	}
	return s.listener.Next()
}

// handleConfigChange re-reads the theme section after the config file is
// saved and restyles the page with it. A bad theme keeps the current one.
func (m *Model) handleConfigChange(ev pubsub.Event[watcher.Change]) tea.Cmd {
	switch ev.Kind {
	case pubsub.ConfigChanged:
		m.reloadTheme(ev.Payload.Path)
	case pubsub.WatchFailed:
		log.Warn(log.CatConfig, "Config watch error", "error", ev.Payload.Err)
	}
	return m.watchListener.Next()
}

func (m *Model) reloadTheme(path string) {
	theme, err := config.ReadTheme(path)
	if err == nil {
		err = styles.ApplyTheme(styles.ThemeConfig{
			Preset: theme.Preset,
			Colors: theme.FlattenedColors(),
		})
	}
	if err != nil {
		log.ErrorErr(log.CatConfig, "Theme reload failed", err, "path", path)
		m.err = fmt.Sprintf("Theme reload failed: %v", err)
		return
	}
	m.cfg.Theme = theme
	m.err = ""
	m.status = "Theme reloaded"
	log.Info(log.CatConfig, "Theme reloaded", "path", path, "preset", theme.Preset)
}

// syncControlled hands every controlled picker its host value. The picker
// ignores values it has already seen.
func (m Model) syncControlled() {
	for _, s := range m.slots {
		if !s.entry.Controlled {
			continue
		}
		if err := s.picker.Controller().SyncActiveFamily(s.value); err != nil {
			log.Debug(log.CatUI, "Controlled sync deferred", "picker", s.entry.ID, "error", err)
		}
	}
}

func (m Model) slotFor(instanceID string) *slot {
	for _, s := range m.slots {
		if s.picker.Controller().ID() == instanceID {
			return s
		}
	}
	return nil
}

func (m Model) pickerWidth() int {
	return min(max(m.width-sampleIndent, minPickerW), maxPickerW)
}

// Close cancels the listeners, stops the config watcher and releases every
// picker and catalog.
func (m Model) Close() {
	m.cancel()
	if m.watcher != nil {
		_ = m.watcher.Stop()
	}
	for _, s := range m.slots {
		s.picker.Controller().Close()
		s.manager.Close()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("fontpick"))
	b.WriteString("\n\n")

	for i, s := range m.slots {
		label := s.entry.ID
		if label == "" {
			label = "font"
		}
		if s.entry.Controlled {
			label += " (controlled)"
		}
		b.WriteString(styles.LabelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(s.picker.View())
		b.WriteString("\n")
		b.WriteString(s.sample.Mark(m.renderSample(s)))
		if i < len(m.slots)-1 {
			b.WriteString("\n\n")
		}
	}

	if m.logs.Visible() {
		b.WriteString("\n\n")
		b.WriteString(m.logs.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(m.helpBindings()))
	} else {
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return zone.Scan(m.root.Mark(b.String()))
}

func (m Model) renderSample(s *slot) string {
	text := s.sample.Text
	if m.width > sampleIndent {
		text = truncate.StringWithTail(text, uint(m.width-sampleIndent), "…") //nolint:gosec // width is positive
	}
	ctrl := s.picker.Controller()
	style, ok := ctrl.Preview(ctrl.ActiveFamily())
	if !ok {
		style = lipgloss.NewStyle().Foreground(styles.SampleColor)
	}
	return strings.Repeat(" ", sampleIndent) + style.Render(text)
}

func (m Model) renderStatus() string {
	if m.err != "" {
		return styles.ErrorStyle.Render(m.err)
	}
	line := m.status
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…") //nolint:gosec // width is positive
	}
	return styles.StatusBarStyle.Render(line)
}

func (m Model) helpBindings() [][]key.Binding {
	groups := m.keys.FullHelp()
	return append(groups, keys.Picker.FullHelp()...)
}

// Pickers returns the picker models in display order.
func (m Model) Pickers() []fontpicker.Model {
	out := make([]fontpicker.Model, len(m.slots))
	for i, s := range m.slots {
		out[i] = s.picker
	}
	return out
}

// Focus returns the index of the picker receiving key presses.
func (m Model) Focus() int { return m.focus }

// Root returns the element tree the view is marked with.
func (m Model) Root() *uitree.Node { return m.root }
