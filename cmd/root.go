package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/fontpick/internal/app"
	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/config"
	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/tracing"
	"github.com/zjrosen/fontpick/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	envPrefix         = "FONTPICK"
	localConfigPath   = ".fontpick/config.yaml"
	tracerShutdownMax = 2 * time.Second
)

var (
	version  = "dev"
	cfgFile  string
	pickerID string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fontpick",
	Short: "A terminal font picker",
	Long: `A terminal font picker backed by a font catalog. Each configured picker
shows the active font, opens a scrollable list of families and renders a
sample line in the selected font.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/fontpick/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false,
		"write debug logs to log_file (also FONTPICK_DEBUG)")
	rootCmd.Flags().String("api-key", "", "font catalog API key (also FONTPICK_API_KEY)")
	rootCmd.Flags().StringVar(&pickerID, "picker-id", "", "only show the picker with this id")
	rootCmd.Flags().String("active-font", "", "initial font family")
	rootCmd.Flags().String("sort", "", "list order: alphabet or popularity")
	rootCmd.Flags().Int("limit", 0, "maximum number of fonts in a list")

	// Bind flags to viper
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("api_key", rootCmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("picker.active_font", rootCmd.Flags().Lookup("active-font"))
	_ = viper.BindPFlag("picker.sort", rootCmd.Flags().Lookup("sort"))
	_ = viper.BindPFlag("picker.limit", rootCmd.Flags().Lookup("limit"))
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("sample_text", defaults.SampleText)
	v.SetDefault("watch_config", defaults.WatchConfig)
	v.SetDefault("picker.active_font", defaults.Picker.ActiveFont)
	v.SetDefault("picker.scripts", defaults.Picker.Scripts)
	v.SetDefault("picker.variants", defaults.Picker.Variants)
	v.SetDefault("picker.limit", defaults.Picker.Limit)
	v.SetDefault("picker.sort", defaults.Picker.Sort)
	v.SetDefault("picker.throttle", defaults.Picker.Throttle)
	v.SetDefault("picker.list_height", defaults.Picker.ListHeight)
	v.SetDefault("catalog.source", defaults.Catalog.Source)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .fontpick/config.yaml (current directory)
		// 2. ~/.config/fontpick/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "fontpick"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .fontpick/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// selectPickers narrows entries to the one named by id. An empty id keeps
// them all.
func selectPickers(entries []config.PickerEntry, id string) ([]config.PickerEntry, error) {
	if id == "" {
		return entries, nil
	}
	for _, e := range entries {
		if e.ID == id {
			return []config.PickerEntry{e}, nil
		}
	}
	return nil, fmt.Errorf("no picker with id %q", id)
}

// openSource builds the catalog source named by the config. The returned
// close function is never nil.
func openSource(c config.CatalogConfig) (catalog.Source, func() error, error) {
	noop := func() error { return nil }
	switch c.Source {
	case "", "embedded":
		return catalog.EmbeddedSource{}, noop, nil
	case "file":
		return catalog.FileSource{Path: c.Path}, noop, nil
	case "sqlite":
		src, err := catalog.OpenSQLiteSource(c.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("opening font database: %w", err)
		}
		return src, src.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown catalog source %q", c.Source)
}

// tracingConfig converts the file configuration, filling in the default
// trace file location.
func tracingConfig(t config.TracingConfig) tracing.Config {
	tc := tracing.DefaultConfig()
	tc.ServiceVersion = version
	tc.Enabled = t.Enabled
	tc.SampleRate = t.SampleRate
	if t.Exporter != "" {
		tc.Exporter = t.Exporter
	}
	if t.OTLPEndpoint != "" {
		tc.OTLPEndpoint = t.OTLPEndpoint
	}
	tc.FilePath = t.FilePath
	if tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	return tc
}

func runApp(_ *cobra.Command, _ []string) error {
	// Initialize logging if debug mode enabled (via flag, env var or config)
	if cfg.Debug {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "fontpick")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()

		log.Info(log.CatConfig, "fontpick starting", "debug", true, "logPath", logPath)
	}

	pickers, err := selectPickers(cfg.Pickers, pickerID)
	if err != nil {
		return err
	}
	cfg.Pickers = pickers

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := styles.ApplyTheme(styles.ThemeConfig{
		Preset: cfg.Theme.Preset,
		Colors: cfg.Theme.FlattenedColors(),
	}); err != nil {
		return fmt.Errorf("invalid theme configuration: %w", err)
	}

	provider, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownMax)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracer shutdown failed", err)
		}
	}()

	source, closeSource, err := openSource(cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	model := app.New(app.Services{
		Config:     &cfg,
		Source:     source,
		Tracer:     provider.Tracer(),
		ConfigPath: viper.ConfigFileUsed(),
	})
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
