package testutil

import "strings"

// fontData holds a row to be inserted into the fonts table.
type fontData struct {
	family   string
	category string
	variants []string
	subsets  []string
	rank     int
}

func defaultFont(family string, rank int) fontData {
	return fontData{
		family:   family,
		category: "sans-serif",
		variants: []string{"regular"},
		subsets:  []string{"latin"},
		rank:     rank,
	}
}

// FontOption customizes a font row.
type FontOption func(*fontData)

// WithCategory sets the font category.
func WithCategory(category string) FontOption {
	return func(f *fontData) { f.category = category }
}

// WithVariants sets the available variants.
func WithVariants(variants ...string) FontOption {
	return func(f *fontData) { f.variants = variants }
}

// WithSubsets sets the supported scripts.
func WithSubsets(subsets ...string) FontOption {
	return func(f *fontData) { f.subsets = subsets }
}

// WithRank overrides the popularity rank (defaults to insertion order).
func WithRank(rank int) FontOption {
	return func(f *fontData) { f.rank = rank }
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}
