package fontpicker

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/keys"
	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/ui/uitree"
)

const (
	defaultWidth      = 32
	defaultListHeight = 8
	wheelStep         = 3
)

// FontChangedMsg is emitted after a selection changed the active font.
type FontChangedMsg struct {
	InstanceID string
	Font       catalog.Font
}

// SelectionErrorMsg is emitted when a selection could not be attempted.
type SelectionErrorMsg struct {
	InstanceID string
	Err        error
}

// Model is the Bubble Tea adapter around a Controller.
type Model struct {
	ctrl       *Controller
	keys       keys.PickerKeyMap
	viewport   viewport.Model
	cursor     int
	focused    bool
	width      int
	listHeight int
}

// NewModel wraps ctrl.
func NewModel(ctrl *Controller) Model {
	m := Model{
		ctrl:       ctrl,
		keys:       keys.Picker,
		width:      defaultWidth,
		listHeight: defaultListHeight,
	}
	m.viewport = viewport.New(m.innerWidth(), m.listHeight)
	return m
}

// Init starts loading the catalog.
func (m Model) Init() tea.Cmd {
	return m.ctrl.InitCmd(context.Background())
}

// SetWidth sets the rendered width including borders.
func (m Model) SetWidth(width int) Model {
	if width > 8 {
		m.width = width
	}
	m.viewport.Width = m.innerWidth()
	return m.refresh()
}

// SetListHeight sets how many rows the open list shows.
func (m Model) SetListHeight(height int) Model {
	if height > 0 {
		m.listHeight = height
	}
	m.viewport.Height = m.listHeight
	return m.refresh()
}

// SetFocused routes key presses to the picker.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// Focused reports whether the picker receives key presses.
func (m Model) Focused() bool { return m.focused }

// Controller returns the wrapped controller.
func (m Model) Controller() *Controller { return m.ctrl }

// Cursor returns the highlighted row of the open list.
func (m Model) Cursor() int { return m.cursor }

// YOffset returns the list scroll offset in rows.
func (m Model) YOffset() int { return m.viewport.YOffset }

func (m Model) innerWidth() int {
	return m.width - 2
}

// Update handles messages addressed to this picker. Messages carrying
// another instance ID are ignored.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CatalogLoadedMsg:
		if msg.InstanceID != m.ctrl.ID() {
			return m, nil
		}
		m.ctrl.HandleCatalogLoaded(msg)
		m.cursor = m.activeIndex()
		m = m.refresh()
		if m.ctrl.Expanded() {
			return m, m.ctrl.OnScroll(m.geometry())
		}
		return m, nil

	case previewTickMsg:
		if msg.instanceID != m.ctrl.ID() {
			return m, nil
		}
		return m, m.ctrl.FlushPreviews()

	case PreviewsDownloadedMsg:
		if msg.InstanceID != m.ctrl.ID() {
			return m, nil
		}
		return m.refresh(), nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleWheel(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.ctrl.Expanded() {
		if key.Matches(msg, m.keys.Toggle) {
			return m.open()
		}
		return m, nil
	}

	count := len(m.ctrl.Fonts())
	switch {
	case key.Matches(msg, m.keys.Close):
		m.ctrl.ToggleExpanded()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if count == 0 {
			return m, nil
		}
		return m.activate(m.ctrl.ItemNode(m.cursor))
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(m.cursor - m.listHeight)
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(m.cursor + m.listHeight)
	case key.Matches(msg, m.keys.Top):
		return m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(count - 1)
	}
	return m, nil
}

func (m Model) open() (Model, tea.Cmd) {
	m.ctrl.ToggleExpanded()
	m.cursor = m.activeIndex()
	m = m.refresh()
	m = m.ensureVisible()
	return m, m.ctrl.OnScroll(m.geometry())
}

func (m Model) moveCursor(to int) (Model, tea.Cmd) {
	count := len(m.ctrl.Fonts())
	if count == 0 {
		return m, nil
	}
	m.cursor = min(max(to, 0), count-1)
	before := m.viewport.YOffset
	m = m.refresh()
	m = m.ensureVisible()
	if m.viewport.YOffset == before {
		return m, nil
	}
	return m, m.ctrl.OnScroll(m.geometry())
}

func (m Model) handleWheel(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.ctrl.Expanded() || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
		return m, nil
	}
	z := zone.Get(m.ctrl.List().ID)
	if z == nil || !z.InBounds(msg) {
		return m, nil
	}
	return m.scroll(msg.Button == tea.MouseButtonWheelUp)
}

func (m Model) scroll(up bool) (Model, tea.Cmd) {
	before := m.viewport.YOffset
	if up {
		m.viewport.ScrollUp(wheelStep)
	} else {
		m.viewport.ScrollDown(wheelStep)
	}
	if m.viewport.YOffset == before {
		return m, nil
	}
	return m, m.ctrl.OnScroll(m.geometry())
}

// Activate handles a pointer activation the host resolved to target.
// Targets outside this picker are ignored; the host still dispatches them
// through the shared pointer.Dispatcher so open pickers can collapse.
func (m Model) Activate(target *uitree.Node) (Model, tea.Cmd) {
	switch {
	case target == nil:
		return m, nil
	case target == m.ctrl.Button():
		if m.ctrl.Expanded() {
			m.ctrl.ToggleExpanded()
			return m, nil
		}
		return m.open()
	case target.Parent() == m.ctrl.List():
		return m.activate(target)
	}
	return m, nil
}

func (m Model) activate(target *uitree.Node) (Model, tea.Cmd) {
	id := m.ctrl.ID()
	font, applied, err := m.ctrl.ActivateSelection(target)
	if err != nil {
		if errors.Is(err, ErrMissingSelectionTarget) {
			log.Warn(log.CatPicker, "Selection without target", "picker", id)
		}
		return m, func() tea.Msg { return SelectionErrorMsg{InstanceID: id, Err: err} }
	}
	m.cursor = m.activeIndex()
	m = m.refresh()
	if !applied {
		return m, nil
	}
	return m, func() tea.Msg { return FontChangedMsg{InstanceID: id, Font: font} }
}

// ScrollTo moves the list offset to row and feeds the preview scheduler.
func (m Model) ScrollTo(row int) (Model, tea.Cmd) {
	before := m.viewport.YOffset
	m.viewport.SetYOffset(row)
	if m.viewport.YOffset == before {
		return m, nil
	}
	return m, m.ctrl.OnScroll(m.geometry())
}

func (m Model) geometry() ScrollGeometry {
	return ScrollGeometry{
		ScrollTop:    m.viewport.YOffset,
		ClientHeight: m.viewport.Height,
		ScrollHeight: m.viewport.TotalLineCount(),
		ItemCount:    len(m.ctrl.Fonts()),
	}
}

func (m Model) activeIndex() int {
	active := m.ctrl.ActiveFamily()
	for i, f := range m.ctrl.Fonts() {
		if f.Family == active {
			return i
		}
	}
	return 0
}

func (m Model) ensureVisible() Model {
	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
	return m
}

// refresh re-renders the list rows into the viewport.
func (m Model) refresh() Model {
	m.viewport.Height = m.listHeight
	if n := len(m.ctrl.Fonts()); n > 0 {
		m.viewport.Height = min(m.listHeight, n)
	}
	m.viewport.SetContent(m.renderRows())
	return m
}
