// Package watcher reports edits to the fontpick config file so the theme
// can be reloaded while the program runs.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/fontpick/internal/log"
	"github.com/zjrosen/fontpick/internal/pubsub"
)

// DefaultDebounce coalesces the burst of events a single editor save
// produces.
const DefaultDebounce = 300 * time.Millisecond

// Change is the payload of ConfigChanged and WatchFailed events.
type Change struct {
	Path string
	Err  error
}

// Config holds watcher options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig watches path with DefaultDebounce.
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce}
}

// Watcher publishes a ConfigChanged event after the config file settles.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	name     string
	debounce time.Duration
	broker   *pubsub.Broker[Change]
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path := filepath.Clean(cfg.Path)
	return &Watcher{
		fs:       fsw,
		path:     path,
		name:     filepath.Base(path),
		debounce: debounce,
		broker:   pubsub.NewBroker[Change](),
		done:     make(chan struct{}),
	}, nil
}

// Broker delivers ConfigChanged and WatchFailed events.
func (w *Watcher) Broker() *pubsub.Broker[Change] { return w.broker }

// Start watches the directory holding the config file.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	go w.loop()
	log.Debug(log.CatConfig, "Watching config", "path", w.path)
	return nil
}

// Stop ends watching and closes the broker. It may be called repeatedly.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.broker.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.broker.Publish(pubsub.ConfigChanged, Change{Path: w.path})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatConfig, "Config watcher error", "path", w.path, "error", err)
			w.broker.Publish(pubsub.WatchFailed, Change{Path: w.path, Err: err})

		case <-w.done:
			return
		}
	}
}

// relevant reports whether ev wrote or replaced the config file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return filepath.Base(ev.Name) == w.name
}
