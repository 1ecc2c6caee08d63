package fontpicker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/ui/pointer"
	"github.com/zjrosen/fontpick/internal/ui/uitree"
)

// LoadErrorTitle is logged and shown when the catalog cannot be loaded.
const LoadErrorTitle = "Error trying to fetch the list of available fonts"

var (
	// ErrMissingSelectionTarget is returned when a selection carries no family.
	ErrMissingSelectionTarget = errors.New("missing selection target")
	// ErrCatalogNotReady is returned when the active font is set before the
	// catalog finished loading.
	ErrCatalogNotReady = errors.New("font catalog not ready")

	// ErrNotControlled is returned by SyncActiveFamily on a picker that
	// tracks its own selection.
	ErrNotControlled = errors.New("picker is not controlled")
)

// Catalog is the font-manager collaborator a picker drives.
type Catalog interface {
	Init(ctx context.Context) error
	Fonts() []catalog.Font
	SetActiveFont(family string) (catalog.Font, error)
	DownloadPreviews(upTo int)
	SelectorSuffix() string
}

// PreviewSource is implemented by catalogs that can render downloaded
// previews. The view falls back to plain text without it.
type PreviewSource interface {
	Preview(family string) (lipgloss.Style, bool)
}

// Config configures a Controller.
type Config struct {
	Catalog Catalog

	// ActiveFamily is the initially active family, normally the same
	// default the Catalog was constructed with.
	ActiveFamily string

	// Controlled pickers follow the host: the host calls SyncActiveFamily
	// with its own value after every update.
	Controlled bool

	Sort  catalog.SortOption
	Limit int

	// Throttle is the preview request window. Zero means DefaultThrottle.
	Throttle time.Duration

	// Pointer delivers activations from anywhere on screen. A private
	// dispatcher is used when nil, so outside activations never arrive.
	Pointer *pointer.Dispatcher

	// OnChange is called after a selection successfully changed the font.
	OnChange func(catalog.Font)
}

// Controller owns one picker's state: loading status, expansion, the
// active family and the pointer registration. It is not safe for
// concurrent use; Bubble Tea calls it from the update loop only.
type Controller struct {
	id         string
	catalog    Catalog
	controlled bool
	sort       catalog.SortOption
	limit      int
	onChange   func(catalog.Font)
	dispatcher *pointer.Dispatcher
	scheduler  *Scheduler

	loading   LoadingStatus
	expansion Expansion
	loaded    bool
	closed    bool
	errMsg    string

	active      string
	lastApplied string
	lastInput   string
	pending     string

	fonts        []catalog.Font
	registration *pointer.Registration

	root   *uitree.Node
	button *uitree.Node
	list   *uitree.Node
	suffix string
}

// New creates a controller in StatusLoading. Call InitCmd to load the catalog.
func New(cfg Config) *Controller {
	dispatcher := cfg.Pointer
	if dispatcher == nil {
		dispatcher = pointer.NewDispatcher()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = catalog.DefaultOptions().Limit
	}
	suffix := cfg.Catalog.SelectorSuffix()

	c := &Controller{
		id:          uuid.NewString(),
		catalog:     cfg.Catalog,
		controlled:  cfg.Controlled,
		sort:        cfg.Sort,
		limit:       limit,
		onChange:    cfg.OnChange,
		dispatcher:  dispatcher,
		scheduler:   NewScheduler(cfg.Throttle),
		active:      cfg.ActiveFamily,
		lastApplied: cfg.ActiveFamily,
		lastInput:   cfg.ActiveFamily,
		suffix:      suffix,
	}
	c.root = uitree.NewRoot("font-picker" + suffix)
	c.button = c.root.Append("dropdown-button"+suffix, cfg.ActiveFamily)
	c.list = c.root.Append("font-list"+suffix, "")
	return c
}

// CatalogLoadedMsg reports the outcome of InitCmd.
type CatalogLoadedMsg struct {
	InstanceID string
	Err        error
}

// InitCmd loads the catalog off the update loop.
func (c *Controller) InitCmd(ctx context.Context) tea.Cmd {
	id := c.id
	cat := c.catalog
	return func() tea.Msg {
		return CatalogLoadedMsg{InstanceID: id, Err: cat.Init(ctx)}
	}
}

// HandleCatalogLoaded applies an init outcome. Failures become
// StatusError; they are never returned to the host.
func (c *Controller) HandleCatalogLoaded(msg CatalogLoadedMsg) {
	if msg.InstanceID != c.id {
		return
	}
	if c.closed {
		log.Debug(log.CatPicker, "Dropping catalog result for closed picker", "picker", c.suffix)
		return
	}

	if msg.Err != nil {
		c.loading = NextLoading(c.loading, EventInitFailed)
		log.ErrorErr(log.CatCatalog, LoadErrorTitle, msg.Err, "picker", c.suffix)
		return
	}

	c.loading = NextLoading(c.loading, EventInitSucceeded)
	c.loaded = true
	c.fonts = c.shape(c.catalog.Fonts())
	c.list.Clear()
	for _, f := range c.fonts {
		c.list.Append("font-button-"+f.ID()+c.suffix, f.Family)
	}
	log.Debug(log.CatPicker, "Font list ready", "picker", c.suffix, "fonts", len(c.fonts))

	if c.pending != "" {
		family := c.pending
		c.pending = ""
		if family != c.lastApplied {
			_, _ = c.apply(family)
		}
	}
}

// shape truncates to the limit in catalog order, then sorts if requested.
func (c *Controller) shape(fonts []catalog.Font) []catalog.Font {
	if len(fonts) > c.limit {
		fonts = fonts[:c.limit]
	}
	out := slices.Clone(fonts)
	if c.sort.IsAlphabetical() {
		slices.SortStableFunc(out, func(a, b catalog.Font) int {
			return strings.Compare(strings.ToLower(a.Family), strings.ToLower(b.Family))
		})
	}
	return out
}

// SetActiveFontFamily makes family active. A family unknown to the catalog
// sets StatusError and a visible message, and the previous family stays.
func (c *Controller) SetActiveFontFamily(family string) error {
	_, err := c.apply(family)
	return err
}

func (c *Controller) apply(family string) (catalog.Font, error) {
	if c.loading == StatusLoading {
		return catalog.Font{}, ErrCatalogNotReady
	}
	font, err := c.catalog.SetActiveFont(family)
	if err != nil {
		c.errMsg = err.Error()
		c.loading = NextLoading(c.loading, EventSetActiveFailed)
		log.Warn(log.CatPicker, "Set active font failed", "picker", c.suffix, "family", family, "error", err)
		return catalog.Font{}, fmt.Errorf("set active font %q: %w", family, err)
	}
	c.active = font.Family
	c.lastApplied = family
	c.errMsg = ""
	c.button.Text = font.Family
	c.loading = NextLoading(c.loading, EventSetActiveSucceeded)
	return font, nil
}

// SyncActiveFamily feeds the host's value to a controlled picker. Hosts
// may call it after every update: the catalog is only asked when the value
// changed since the previous call and differs from the last applied
// family, so a rejected family is tried once. While loading, the value is
// kept and applied once the catalog is ready.
func (c *Controller) SyncActiveFamily(family string) error {
	if !c.controlled {
		return ErrNotControlled
	}
	if family == c.lastInput {
		return nil
	}
	c.lastInput = family
	if family == c.lastApplied {
		c.pending = ""
		return nil
	}
	if c.loading == StatusLoading {
		c.pending = family
		return nil
	}
	return c.SetActiveFontFamily(family)
}

// ToggleExpanded opens or closes the list.
func (c *Controller) ToggleExpanded() {
	c.transition(EventToggle)
}

// Collapse closes the list if it is open.
func (c *Controller) Collapse() {
	c.transition(EventOutsideActivation)
}

func (c *Controller) transition(ev ExpansionEvent) {
	if c.closed {
		return
	}
	next := NextExpansion(c.expansion, ev)
	if next == c.expansion {
		return
	}
	c.expansion = next
	if next == Expanded {
		if c.registration == nil {
			c.registration = c.dispatcher.Register(c.HandleOutsideActivation)
		}
	} else {
		c.registration.Release()
		c.registration = nil
	}
	log.Debug(log.CatPicker, "Expansion changed", "picker", c.suffix, "state", next)
}

// HandleOutsideActivation collapses the list unless target is the picker
// root or one of its descendants.
func (c *Controller) HandleOutsideActivation(target *uitree.Node) {
	if c.root.IsAncestorOf(target) {
		return
	}
	c.transition(EventOutsideActivation)
}

// ActivateSelection selects the family carried by target. The list collapses
// whether or not the family could be applied; OnChange runs only on success.
// Only a missing target is reported as an error, other failures are
// recorded in the picker state. applied reports whether the font changed.
func (c *Controller) ActivateSelection(target *uitree.Node) (font catalog.Font, applied bool, err error) {
	if target == nil || strings.TrimSpace(target.Text) == "" {
		return catalog.Font{}, false, ErrMissingSelectionTarget
	}
	font, setErr := c.apply(target.Text)
	c.transition(EventSelection)
	if setErr != nil {
		return catalog.Font{}, false, nil
	}
	if c.onChange != nil {
		c.onChange(font)
	}
	return font, true, nil
}

// Fonts returns the rendered list. It is empty until the catalog has loaded
// and survives later set-active failures.
func (c *Controller) Fonts() []catalog.Font {
	if !c.loaded {
		return nil
	}
	return c.fonts
}

// ItemNode returns the list node for the i-th rendered font.
func (c *Controller) ItemNode(i int) *uitree.Node {
	items := c.list.Children()
	if i < 0 || i >= len(items) {
		return nil
	}
	return items[i]
}

// OnScroll feeds list geometry to the preview scheduler. It returns a
// command that fires the throttle window, or nil.
func (c *Controller) OnScroll(g ScrollGeometry) tea.Cmd {
	if c.closed || c.loading != StatusFinished {
		return nil
	}
	if !c.scheduler.OnScroll(g) {
		return nil
	}
	id := c.id
	return tea.Tick(c.scheduler.Interval(), func(time.Time) tea.Msg {
		return previewTickMsg{instanceID: id}
	})
}

// PreviewsDownloadedMsg reports a completed preview request.
type PreviewsDownloadedMsg struct {
	InstanceID string
	UpTo       int
}

type previewTickMsg struct {
	instanceID string
}

// FlushPreviews closes the throttle window and returns a command that
// forwards the pending request to the catalog, or nil.
func (c *Controller) FlushPreviews() tea.Cmd {
	upTo, ok := c.scheduler.Flush()
	if !ok || c.closed {
		return nil
	}
	log.Debug(log.CatPreview, "Requesting previews", "picker", c.suffix, "upTo", upTo)
	id := c.id
	cat := c.catalog
	return func() tea.Msg {
		cat.DownloadPreviews(upTo)
		return PreviewsDownloadedMsg{InstanceID: id, UpTo: upTo}
	}
}

// Preview returns the downloaded preview style for family.
func (c *Controller) Preview(family string) (lipgloss.Style, bool) {
	src, ok := c.catalog.(PreviewSource)
	if !ok {
		return lipgloss.Style{}, false
	}
	return src.Preview(family)
}

// Close releases the pointer registration. Results arriving afterwards are
// dropped.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.registration.Release()
	c.registration = nil
	c.expansion = Collapsed
	c.closed = true
}

// ID returns the instance identifier carried by this controller's messages.
func (c *Controller) ID() string { return c.id }

// Status returns the loading status.
func (c *Controller) Status() LoadingStatus { return c.loading }

// Expansion returns whether the list is open.
func (c *Controller) Expansion() Expansion { return c.expansion }

// Expanded is shorthand for Expansion() == Expanded.
func (c *Controller) Expanded() bool { return c.expansion == Expanded }

// ActiveFamily returns the active family.
func (c *Controller) ActiveFamily() string { return c.active }

// LastApplied returns the family last successfully applied.
func (c *Controller) LastApplied() string { return c.lastApplied }

// Err returns the visible error message, or "".
func (c *Controller) Err() string { return c.errMsg }

// Controlled reports whether the host owns the active family.
func (c *Controller) Controlled() bool { return c.controlled }

// Registered reports whether a pointer listener is currently registered.
func (c *Controller) Registered() bool { return c.registration != nil }

// Closed reports whether Close was called.
func (c *Controller) Closed() bool { return c.closed }

// Root returns the picker's root node. Hosts adopt it into their tree.
func (c *Controller) Root() *uitree.Node { return c.root }

// Button returns the toggle button node.
func (c *Controller) Button() *uitree.Node { return c.button }

// List returns the list container node.
func (c *Controller) List() *uitree.Node { return c.list }
