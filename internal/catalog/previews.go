package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/fontpick/internal/log"
)

// PreviewLoader produces the preview asset for one font in one variant.
type PreviewLoader func(ctx context.Context, f Font, variant string) (lipgloss.Style, error)

// StylePreview approximates a typeface in the terminal: the category picks a
// base treatment and the variant adds weight or slant.
func StylePreview(_ context.Context, f Font, variant string) (lipgloss.Style, error) {
	style := lipgloss.NewStyle()

	switch f.Category {
	case CategoryDisplay:
		style = style.Bold(true)
	case CategoryHandwriting:
		style = style.Italic(true)
	case CategoryMonospace:
		style = style.Faint(true)
	}

	if !containsAll(f.Variants, []string{variant}) {
		return style, nil
	}
	if strings.Contains(variant, "italic") {
		style = style.Italic(true)
	}
	if weight, err := strconv.Atoi(strings.TrimSuffix(variant, "italic")); err == nil && weight >= 600 {
		style = style.Bold(true)
	}
	return style, nil
}

// previewCache stores downloaded previews keyed by family. Entries never
// expire: a downloaded preview stays valid for the catalog's lifetime.
type previewCache struct {
	cache *gocache.Cache
}

func newPreviewCache() *previewCache {
	return &previewCache{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (c *previewCache) get(family string) (lipgloss.Style, bool) {
	value, found := c.cache.Get(family)
	if !found {
		return lipgloss.Style{}, false
	}
	style, ok := value.(lipgloss.Style)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting preview", "family", family)
		return lipgloss.Style{}, false
	}
	return style, true
}

func (c *previewCache) has(family string) bool {
	_, found := c.cache.Get(family)
	return found
}

func (c *previewCache) set(family string, style lipgloss.Style) {
	c.cache.Set(family, style, gocache.NoExpiration)
}

func (c *previewCache) count() int {
	return c.cache.ItemCount()
}
