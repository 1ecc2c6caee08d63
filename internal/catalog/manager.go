package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/pubsub"
	"github.com/zjrosen/fontpick/internal/tracing"
)

const defaultPreviewConcurrency = 4

// Notice is published on the manager's broker.
// ActiveFontChanged carries Font; PreviewsLoaded carries Previews.
type Notice struct {
	PickerID string
	Font     Font
	Previews int
}

// Option configures a Manager.
type Option func(*Manager)

// WithSource sets where fonts are loaded from. Defaults to EmbeddedSource.
func WithSource(src Source) Option {
	return func(m *Manager) { m.source = src }
}

// WithTracer records catalog operations as spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tracer }
}

// WithPreviewLoader replaces StylePreview.
func WithPreviewLoader(loader PreviewLoader) Option {
	return func(m *Manager) { m.loadPreview = loader }
}

// WithPreviewConcurrency bounds parallel preview loads.
func WithPreviewConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// Manager owns one picker's catalog: the filtered font list, the active font
// and the downloaded previews. It is safe for concurrent use.
type Manager struct {
	apiKey        string
	defaultFamily string
	opts          Options
	onChange      func(Font)

	source      Source
	tracer      trace.Tracer
	loadPreview PreviewLoader
	concurrency int
	previews    *previewCache
	broker      *pubsub.Broker[Notice]

	mu          sync.RWMutex
	initStarted bool
	ready       bool
	fonts       []Font
	index       map[string]int
	active      Font
}

// New creates a manager. onChange, when non-nil, is called after every
// successful SetActiveFont.
func New(apiKey, defaultFamily string, opts Options, onChange func(Font), options ...Option) *Manager {
	m := &Manager{
		apiKey:        apiKey,
		defaultFamily: defaultFamily,
		opts:          opts,
		onChange:      onChange,
		source:        EmbeddedSource{},
		loadPreview:   StylePreview,
		concurrency:   defaultPreviewConcurrency,
		previews:      newPreviewCache(),
		broker:        pubsub.NewBroker[Notice](),
		active:        Font{Family: defaultFamily},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Init loads and filters the catalog. It may be called once.
func (m *Manager) Init(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, m.tracer, tracing.SpanCatalogInit,
		attribute.String(tracing.AttrPickerID, m.opts.PickerID),
		attribute.String(tracing.AttrCatalogSrc, m.source.Name()))
	defer func() { tracing.End(span, err) }()

	m.mu.Lock()
	if m.initStarted {
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}
	m.initStarted = true
	m.mu.Unlock()

	if strings.TrimSpace(m.apiKey) == "" {
		return ErrMissingAPIKey
	}
	if err := m.opts.Validate(); err != nil {
		return err
	}

	raw, err := m.source.Load(ctx)
	if err != nil {
		return err
	}
	fonts := m.opts.order(m.opts.filter(raw))

	index := make(map[string]int, len(fonts))
	for i, f := range fonts {
		index[f.Family] = i
	}

	m.mu.Lock()
	m.fonts = fonts
	m.index = index
	if i, ok := index[m.defaultFamily]; ok {
		m.active = fonts[i]
	}
	m.ready = true
	active := m.active
	m.mu.Unlock()

	span.SetAttributes(attribute.Int(tracing.AttrFontCount, len(fonts)))
	log.Info(log.CatCatalog, "Catalog loaded",
		"picker", m.opts.PickerID, "source", m.source.Name(), "fonts", len(fonts), "raw", len(raw))

	m.ensurePreviews(ctx, []Font{active})
	return nil
}

// Fonts returns the filtered catalog in display order.
func (m *Manager) Fonts() []Font {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Font, len(m.fonts))
	copy(out, m.fonts)
	return out
}

// Active returns the active font. Before Init it only carries the family.
func (m *Manager) Active() Font {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// SelectorSuffix returns the identifier suffix for this manager's picker.
func (m *Manager) SelectorSuffix() string {
	return m.opts.SelectorSuffix()
}

// Broker publishes ActiveFontChanged and PreviewsLoaded notices.
func (m *Manager) Broker() *pubsub.Broker[Notice] {
	return m.broker
}

// SetActiveFont makes family the active font. Unknown families return a
// *NotFoundError and leave the active font unchanged.
func (m *Manager) SetActiveFont(family string) (font Font, err error) {
	ctx, span := tracing.Start(context.Background(), m.tracer, tracing.SpanCatalogSetActive,
		attribute.String(tracing.AttrPickerID, m.opts.PickerID),
		attribute.String(tracing.AttrFontFamily, family))
	defer func() { tracing.End(span, err) }()

	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return Font{}, ErrNotInitialized
	}
	i, ok := m.index[family]
	if !ok {
		suggestion := m.suggestLocked(family)
		m.mu.Unlock()
		return Font{}, &NotFoundError{Family: family, Suggestion: suggestion}
	}
	font = m.fonts[i]
	m.active = font
	m.mu.Unlock()

	m.ensurePreviews(ctx, []Font{font})

	log.Debug(log.CatCatalog, "Active font changed", "picker", m.opts.PickerID, "family", family)
	m.broker.Publish(pubsub.FontChanged, Notice{PickerID: m.opts.PickerID, Font: font})
	if m.onChange != nil {
		m.onChange(font)
	}
	return font, nil
}

// suggestLocked returns the closest family by edit distance, or "" when
// nothing is reasonably close. Caller holds m.mu.
func (m *Manager) suggestLocked(family string) string {
	needle := strings.ToLower(family)
	best, bestDist := "", -1
	for _, f := range m.fonts {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(f.Family))
		if bestDist < 0 || d < bestDist {
			best, bestDist = f.Family, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(family)/3) {
		return ""
	}
	return best
}

// DownloadPreviews loads previews for Fonts()[0:upTo]. Already downloaded
// previews are skipped, so repeated calls are cheap.
func (m *Manager) DownloadPreviews(upTo int) {
	ctx, span := tracing.Start(context.Background(), m.tracer, tracing.SpanPreviewDownload,
		attribute.String(tracing.AttrPickerID, m.opts.PickerID),
		attribute.Int(tracing.AttrPreviewUpTo, upTo))
	defer func() { tracing.End(span, nil) }()

	m.mu.RLock()
	if !m.ready {
		m.mu.RUnlock()
		return
	}
	upTo = min(max(upTo, 0), len(m.fonts))
	batch := make([]Font, upTo)
	copy(batch, m.fonts[:upTo])
	m.mu.RUnlock()

	loaded := m.ensurePreviews(ctx, batch)
	span.SetAttributes(attribute.Int(tracing.AttrPreviewCount, loaded))
	if loaded > 0 {
		log.Debug(log.CatPreview, "Previews downloaded", "picker", m.opts.PickerID, "upTo", upTo, "loaded", loaded)
		m.broker.Publish(pubsub.PreviewsDone, Notice{PickerID: m.opts.PickerID, Previews: m.previews.count()})
	}
}

// ensurePreviews loads the missing previews among fonts and returns how many
// were loaded. Load failures are logged and skipped.
func (m *Manager) ensurePreviews(ctx context.Context, fonts []Font) int {
	variant := m.opts.DefaultVariant()

	var (
		mu     sync.Mutex
		loaded int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, f := range fonts {
		if f.Family == "" || m.previews.has(f.Family) {
			continue
		}
		g.Go(func() error {
			style, err := m.loadPreview(gctx, f, variant)
			if err != nil {
				log.ErrorErr(log.CatPreview, "Preview download failed", err, "family", f.Family)
				return nil
			}
			m.previews.set(f.Family, style)
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return loaded
}

// Preview returns the downloaded preview style for family.
func (m *Manager) Preview(family string) (lipgloss.Style, bool) {
	return m.previews.get(family)
}

// Close releases the broker. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.broker.Close()
}
