package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mcpweb/pkg/logging"
)

// Watcher watches the configuration file for changes. The gateway's routing
// table is immutable after startup, so a change only logs that a restart is
// required.
type Watcher struct {
	mu sync.Mutex

	configFile       string
	watcher          *fsnotify.Watcher
	debounceInterval time.Duration
	pending          *time.Timer
	running          bool
	stopCh           chan struct{}

	// onChange fires once per debounced change burst.
	onChange func()
}

// NewWatcher creates a watcher for the config.yaml inside configPath.
func NewWatcher(configPath string, debounceInterval time.Duration) *Watcher {
	if debounceInterval <= 0 {
		debounceInterval = 500 * time.Millisecond
	}
	w := &Watcher{
		configFile:       filepath.Clean(ConfigFilePath(configPath)),
		debounceInterval: debounceInterval,
		stopCh:           make(chan struct{}),
	}
	w.onChange = func() {
		logging.Warn("config", "Configuration file %s changed; restart the gateway to apply", w.configFile)
	}
	return w
}

// Start begins watching for changes. The watch is placed on the directory
// rather than the file so it survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(filepath.Dir(w.configFile)); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx)

	logging.Info("config", "Watching %s for changes", w.configFile)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("config", err, "Config watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.configFile {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounceInterval, w.onChange)
}

// Stop stops the watcher and cancels any pending notification.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			logging.Error("config", err, "Error closing config watcher")
		}
		w.watcher = nil
	}
	return nil
}
