package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// SortOption orders the rendered font list.
type SortOption string

const (
	SortAlphabet     SortOption = "alphabet"
	SortAlphabetical SortOption = "alphabetical"
	SortPopularity   SortOption = "popularity"
)

// IsAlphabetical reports whether s sorts by family name.
func (s SortOption) IsAlphabetical() bool {
	return s == "" || s == SortAlphabet || s == SortAlphabetical
}

// Options filter and shape the catalog.
type Options struct {
	PickerID   string
	Families   []string
	Categories []Category
	Scripts    []string
	Variants   []string
	Limit      int
	Sort       SortOption
}

// DefaultOptions mirrors the picker defaults.
func DefaultOptions() Options {
	return Options{
		Scripts:  []string{"latin"},
		Variants: []string{"regular"},
		Limit:    50,
		Sort:     SortAlphabet,
	}
}

// SelectorSuffix namespaces identifiers when several pickers share a screen.
func (o Options) SelectorSuffix() string {
	if o.PickerID == "" {
		return ""
	}
	return "-" + o.PickerID
}

// DefaultVariant is the variant used to render previews.
func (o Options) DefaultVariant() string {
	if len(o.Variants) == 0 {
		return "regular"
	}
	return o.Variants[0]
}

// Validate checks option values that would otherwise fail silently.
func (o Options) Validate() error {
	if o.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", o.Limit)
	}
	switch o.Sort {
	case "", SortAlphabet, SortAlphabetical, SortPopularity:
	default:
		return fmt.Errorf("unknown sort option %q (valid: alphabet, alphabetical, popularity)", o.Sort)
	}
	for _, c := range o.Categories {
		if !slices.Contains(knownCategories, c) {
			return fmt.Errorf("unknown category %q", c)
		}
	}
	return nil
}

var knownCategories = []Category{
	CategorySansSerif, CategorySerif, CategoryDisplay, CategoryHandwriting, CategoryMonospace,
}

// filter applies the allow-list, category, script and variant filters and
// the limit, preserving source (popularity) order.
func (o Options) filter(fonts []Font) []Font {
	out := make([]Font, 0, len(fonts))
	for _, f := range fonts {
		if len(o.Families) > 0 && !slices.Contains(o.Families, f.Family) {
			continue
		}
		if len(o.Categories) > 0 && !slices.Contains(o.Categories, f.Category) {
			continue
		}
		if !containsAll(f.Subsets, o.Scripts) || !containsAll(f.Variants, o.Variants) {
			continue
		}
		out = append(out, f)
		if o.Limit > 0 && len(out) == o.Limit {
			break
		}
	}
	return out
}

// order sorts filtered fonts for display. Popularity keeps source order.
func (o Options) order(fonts []Font) []Font {
	if o.Sort.IsAlphabetical() {
		slices.SortStableFunc(fonts, func(a, b Font) int {
			return strings.Compare(strings.ToLower(a.Family), strings.ToLower(b.Family))
		})
	}
	return fonts
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
