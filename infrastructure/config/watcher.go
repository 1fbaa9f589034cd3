package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domainconfig "titlechain/domain/config"
)

const layoutDebounce = 100 * time.Millisecond

// LayoutWatcher keeps the domain layout in sync with a YAML file. A reload
// that fails to parse or validate keeps the previous layout.
type LayoutWatcher struct {
	path     string
	base     *domainconfig.DomainConfig
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	mu       sync.RWMutex
	current  *domainconfig.DomainConfig
	onChange []func(*domainconfig.DomainConfig)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLayoutWatcher loads the file once and prepares the watcher. Call Start
// to begin reacting to edits.
func NewLayoutWatcher(path string, base *domainconfig.DomainConfig, logger *zap.Logger) (*LayoutWatcher, error) {
	if base == nil {
		base = domainconfig.DefaultDomainConfig()
	}

	layout, err := LoadLayout(path, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial layout: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors save atomically through a rename, so watch the directory too
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch layout directory: %w", err)
	}

	return &LayoutWatcher{
		path:    path,
		base:    base.Clone(),
		watcher: watcher,
		logger:  logger,
		current: layout,
		stopCh:  make(chan struct{}),
	}, nil
}

// Current implements ports.LayoutSource. The returned value is a copy.
func (w *LayoutWatcher) Current() *domainconfig.DomainConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

// OnChange registers a callback run after every successful reload
func (w *LayoutWatcher) OnChange(fn func(*domainconfig.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for layout changes
func (w *LayoutWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Layout watcher started", zap.String("path", w.path))
}

// Stop stops watching. It is safe to call more than once.
func (w *LayoutWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.logger.Info("Layout watcher stopped")
	})
	return err
}

func (w *LayoutWatcher) watchLoop() {
	var debounce *time.Timer
	name := filepath.Base(w.path)

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(layoutDebounce, func() { _ = w.Reload() })

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Layout watcher error", zap.Error(err))
		}
	}
}

// Reload re-reads the file and swaps it in when valid
func (w *LayoutWatcher) Reload() error {
	layout, err := LoadLayout(w.path, w.base)
	if err != nil {
		w.logger.Error("Failed to reload layout, keeping previous", zap.Error(err))
		return err
	}

	w.mu.Lock()
	w.current = layout
	handlers := make([]func(*domainconfig.DomainConfig), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	w.logger.Info("Layout reloaded",
		zap.String("path", w.path),
		zap.Int("auto_chain_depth", layout.AutoChainDepth),
		zap.Float64("max_zoom", layout.MaxZoom),
	)

	for _, fn := range handlers {
		fn(layout.Clone())
	}
	return nil
}
