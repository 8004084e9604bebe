package watcher

import (
	"github.com/raoulx24/ftp-reaper/internal/config"
)

// UpdateConfig applies reload settings. A new method or poll interval
// restarts the running strategy.
func (w *Watcher) UpdateConfig(cfg config.ReloadConfig) {
	w.mu.Lock()
	changed := cfg.Method != w.mode || cfg.PollInterval != w.interval
	w.interval = cfg.PollInterval
	w.mode = cfg.Method
	w.mu.Unlock()

	if !changed {
		return
	}
	select {
	case w.restart <- struct{}{}:
	default:
	}
}
