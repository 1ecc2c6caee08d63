// Package config provides configuration types and defaults for fontpick.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/log"
)

// Config holds all configuration options for fontpick.
type Config struct {
	// APIKey is handed to every font catalog. Init fails without one.
	APIKey string `mapstructure:"api_key"`

	// Debug enables the file logger; LogFile defaults to debug.log.
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`

	// SampleText is rendered in each picker's active font.
	SampleText string `mapstructure:"sample_text"`

	// WatchConfig reloads the theme when the config file changes.
	WatchConfig bool `mapstructure:"watch_config"`

	Picker  PickerConfig  `mapstructure:"picker"`
	Pickers []PickerEntry `mapstructure:"pickers"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// PickerConfig holds the options shared by every picker.
type PickerConfig struct {
	ActiveFont string        `mapstructure:"active_font"` // default "Open Sans"
	Families   []string      `mapstructure:"families"`    // allow-list, empty = all
	Categories []string      `mapstructure:"categories"`  // sans-serif, serif, display, handwriting, monospace
	Scripts    []string      `mapstructure:"scripts"`     // default [latin]
	Variants   []string      `mapstructure:"variants"`    // default [regular]; first is the preview variant
	Limit      int           `mapstructure:"limit"`       // default 50
	Sort       string        `mapstructure:"sort"`        // alphabet (default), alphabetical, popularity
	Throttle   time.Duration `mapstructure:"throttle"`    // preview request window, default 250ms
	ListHeight int           `mapstructure:"list_height"` // rows shown when open, default 8
}

// PickerEntry declares one picker on screen.
type PickerEntry struct {
	// ID namespaces the picker's element identifiers. At most one picker
	// may leave it empty.
	ID string `mapstructure:"id"`

	// ActiveFont overrides picker.active_font for this picker.
	ActiveFont string `mapstructure:"active_font"`

	// Controlled pickers follow a value owned by the host instead of
	// tracking the selection themselves.
	Controlled bool `mapstructure:"controlled"`
}

// CatalogConfig selects where font metadata comes from.
type CatalogConfig struct {
	// Source is "embedded" (default), "file" (YAML) or "sqlite".
	Source string `mapstructure:"source"`
	// Path is required for the file and sqlite sources.
	Path string `mapstructure:"path"`
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "catppuccin-mocha", "dracula", "solarized-light", "high-contrast"
	Preset string `mapstructure:"preset"`

	// Colors allows overriding individual color tokens.
	// Supports both nested YAML structure and dot notation.
	// Example YAML:
	//   colors:
	//     status:
	//       error: "#FF0000"
	// Or quoted dot notation:
	//   colors:
	//     "status.error": "#FF0000"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
// This handles both nested YAML structures and already-flat keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/fontpick/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/fontpick/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fontpick", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	opts := catalog.DefaultOptions()
	return Config{
		LogFile:     "debug.log",
		SampleText:  "The quick brown fox jumps over the lazy dog",
		WatchConfig: true,
		Picker: PickerConfig{
			ActiveFont: "Open Sans",
			Scripts:    opts.Scripts,
			Variants:   opts.Variants,
			Limit:      opts.Limit,
			Sort:       string(opts.Sort),
			Throttle:   250 * time.Millisecond,
			ListHeight: 8,
		},
		Pickers: []PickerEntry{{ID: ""}},
		Catalog: CatalogConfig{Source: "embedded"},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// ActiveFontFor returns the initial family for entry.
func (c Config) ActiveFontFor(entry PickerEntry) string {
	if entry.ActiveFont != "" {
		return entry.ActiveFont
	}
	if c.Picker.ActiveFont != "" {
		return c.Picker.ActiveFont
	}
	return "Open Sans"
}

// CatalogOptions converts the shared picker options for entry.
func (c Config) CatalogOptions(entry PickerEntry) catalog.Options {
	opts := catalog.DefaultOptions()
	opts.PickerID = entry.ID
	opts.Families = c.Picker.Families
	for _, cat := range c.Picker.Categories {
		opts.Categories = append(opts.Categories, catalog.Category(cat))
	}
	if len(c.Picker.Scripts) > 0 {
		opts.Scripts = c.Picker.Scripts
	}
	if len(c.Picker.Variants) > 0 {
		opts.Variants = c.Picker.Variants
	}
	if c.Picker.Limit > 0 {
		opts.Limit = c.Picker.Limit
	}
	if c.Picker.Sort != "" {
		opts.Sort = catalog.SortOption(c.Picker.Sort)
	}
	return opts
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidatePicker(c.Picker); err != nil {
		return err
	}
	if err := ValidatePickers(c.Pickers); err != nil {
		return err
	}
	if err := ValidateCatalog(c.Catalog); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidatePicker checks shared picker options for errors.
func ValidatePicker(p PickerConfig) error {
	if p.Limit < 0 {
		return fmt.Errorf("picker.limit must be >= 0, got %d", p.Limit)
	}
	if p.Throttle < 0 {
		return fmt.Errorf("picker.throttle must be >= 0, got %s", p.Throttle)
	}
	if p.ListHeight < 0 {
		return fmt.Errorf("picker.list_height must be >= 0, got %d", p.ListHeight)
	}
	switch catalog.SortOption(p.Sort) {
	case "", catalog.SortAlphabet, catalog.SortAlphabetical, catalog.SortPopularity:
	default:
		return fmt.Errorf("picker.sort must be \"alphabet\", \"alphabetical\" or \"popularity\", got %q", p.Sort)
	}
	known := []string{
		string(catalog.CategorySansSerif), string(catalog.CategorySerif), string(catalog.CategoryDisplay),
		string(catalog.CategoryHandwriting), string(catalog.CategoryMonospace),
	}
	for _, cat := range p.Categories {
		if !slices.Contains(known, cat) {
			return fmt.Errorf("picker.categories: unknown category %q", cat)
		}
	}
	return nil
}

// ValidatePickers checks that picker IDs are unique.
func ValidatePickers(entries []PickerEntry) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if seen[e.ID] {
			if e.ID == "" {
				return fmt.Errorf("pickers[%d]: only one picker may omit its id", i)
			}
			return fmt.Errorf("pickers[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// ValidateCatalog checks the catalog source.
func ValidateCatalog(c CatalogConfig) error {
	switch c.Source {
	case "", "embedded":
		return nil
	case "file", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("catalog.path is required when source is %q", c.Source)
		}
		return nil
	default:
		return fmt.Errorf("catalog.source must be \"embedded\", \"file\" or \"sqlite\", got %q", c.Source)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# fontpick configuration

# Key handed to the font catalog. Loading fails without one.
# Can also be set with FONTPICK_API_KEY.
api_key: local

# Text rendered in the active font of each picker
sample_text: The quick brown fox jumps over the lazy dog

# Options shared by every picker
picker:
  active_font: Open Sans
  # families: [Roboto, Lato, Open Sans]   # allow-list, empty = all
  # categories: [sans-serif, serif]        # sans-serif, serif, display, handwriting, monospace
  scripts: [latin]
  variants: [regular]     # first variant is used for previews
  limit: 50
  sort: alphabet          # alphabet, alphabetical or popularity
  throttle: 250ms         # minimum spacing of preview requests while scrolling
  list_height: 8

# Pickers on screen. Give each an id when there is more than one.
pickers:
  - id: heading
    active_font: Montserrat
  - id: body
    controlled: true      # the host owns the selected family

# Where font metadata comes from
catalog:
  source: embedded        # embedded, file (YAML) or sqlite
  # path: ./fonts.db

# Theme, reloaded on save while watch_config is on
watch_config: true
theme:
  preset: default         # default, catppuccin-mocha, dracula, solarized-light, high-contrast
  # colors:
  #   list.active: "#00FF00"

# Distributed tracing of catalog operations
tracing:
  enabled: false
  exporter: file          # none, file, stdout or otlp
  # file_path: ~/.config/fontpick/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// ReadTheme reads only the theme section of the config file at path.
func ReadTheme(path string) (ThemeConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return ThemeConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	var theme ThemeConfig
	if err := v.UnmarshalKey("theme", &theme); err != nil {
		return ThemeConfig{}, fmt.Errorf("parsing theme: %w", err)
	}
	return theme, nil
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
