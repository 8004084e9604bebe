package watcher

import (
	"os"
)

// prime records the current state so the first detect does not fire.
func (w *Watcher) prime() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
}

// detect calls onChange if the file changed since the last call.
// Empty files are ignored: editors truncate before writing.
func (w *Watcher) detect() bool {
	w.mu.RLock()
	path := w.path
	last := w.lastModTime
	lastSize := w.lastSize
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		w.log.Debug("stat failed", "error", err)
		return false
	}
	if info.Size() == 0 {
		return false
	}
	if !info.ModTime().After(last) && info.Size() == lastSize {
		return false
	}

	w.mu.Lock()
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
	w.mu.Unlock()

	w.log.Info("config file changed")
	if w.onChange != nil {
		w.onChange()
	}
	return true
}
