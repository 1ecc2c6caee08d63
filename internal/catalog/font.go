// Package catalog is the local font-manager collaborator behind the font
// picker. It loads font metadata from an embedded, YAML or SQLite source,
// filters it, tracks the active font and "downloads" previews into a cache.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Category is a font classification such as "serif" or "monospace".
type Category string

const (
	CategorySansSerif   Category = "sans-serif"
	CategorySerif       Category = "serif"
	CategoryDisplay     Category = "display"
	CategoryHandwriting Category = "handwriting"
	CategoryMonospace   Category = "monospace"
)

// Font is one catalog entry. Family is unique within a catalog.
type Font struct {
	Family   string   `yaml:"family"`
	Category Category `yaml:"category"`
	Variants []string `yaml:"variants"`
	Subsets  []string `yaml:"subsets"`
}

// ID returns the identifier derived from the family name.
func (f Font) ID() string {
	return FontID(f.Family)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FontID lower-cases family and collapses whitespace runs to hyphens,
// e.g. "Open  Sans" -> "open-sans".
func FontID(family string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(family, "-"))
}

var (
	// ErrFontNotFound is matched by every not-found error from SetActiveFont.
	ErrFontNotFound = errors.New("font not found")
	// ErrMissingAPIKey is returned by Init when no API key was configured.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("catalog already initialized")
	// ErrNotInitialized is returned when the catalog is used before Init succeeded.
	ErrNotInitialized = errors.New("catalog not initialized")
)

// NotFoundError reports a family absent from the loaded catalog.
type NotFoundError struct {
	Family     string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Font %q not found, did you mean %q?", e.Family, e.Suggestion)
	}
	return fmt.Sprintf("Font %q not found", e.Family)
}

// Is lets errors.Is(err, ErrFontNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFontNotFound
}
