// Package watcher monitors the config file and reports changes for hot reload.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/ftp-reaper/internal/config"
	"github.com/raoulx24/ftp-reaper/internal/fsprobe"
	"github.com/raoulx24/ftp-reaper/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher calls onChange whenever the watched file is rewritten.
type Watcher struct {
	mu sync.RWMutex

	path     string
	interval time.Duration
	mode     string
	debounce time.Duration

	log logging.Logger

	lastModTime time.Time
	lastSize    int64

	onChange func()
	restart  chan struct{}
}

// New creates a watcher for the config file at path.
func New(cfg config.ReloadConfig, path string, log logging.Logger, onChange func()) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		interval: cfg.PollInterval,
		mode:     cfg.Method,
		debounce: defaultDebounce,
		log:      log.With("component", "watcher", "path", path),
		onChange: onChange,
		restart:  make(chan struct{}, 1),
	}
	w.prime()
	return w
}

// Start runs the configured strategy until ctx is done, restarting it
// whenever UpdateConfig changes the method or interval.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- w.run(runCtx) }()

		select {
		case err := <-done:
			cancel()
			return err
		case <-w.restart:
			cancel()
			if err := <-done; err != nil {
				return err
			}
			w.log.Info("watch settings changed, restarting", "mode", w.currentMode(), "interval", w.pollInterval())
		}
	}
}

// run chooses the correct watching strategy based on config.
func (w *Watcher) run(ctx context.Context) error {
	switch mode := w.currentMode(); mode {
	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "", "auto":
		res := fsprobe.Probe(filepath.Dir(w.path))
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func (w *Watcher) currentMode() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}
