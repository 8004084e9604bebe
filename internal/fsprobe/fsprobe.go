// Package fsprobe checks whether fsnotify delivers events for the directory
// holding the config file. Network and overlay mounts often drop them.
package fsprobe

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultTimeout = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool   // true if events are delivered
	Reason            string // explanation when unsupported
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe creates and renames a scratch file in dir and waits DefaultTimeout
// for the watcher to report it.
func Probe(dir string) Result {
	return ProbeWithTimeout(dir, DefaultTimeout)
}

func ProbeWithTimeout(dir string, timeout time.Duration) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("not a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	f, err := os.CreateTemp(dir, ".ftp-reaper-probe-*")
	if err != nil {
		return unsupported("cannot create scratch file: %v", err)
	}
	scratch := f.Name()
	_ = f.Close()

	renamed := scratch + ".done"
	if err := os.Rename(scratch, renamed); err != nil {
		_ = os.Remove(scratch)
		return unsupported("rename failed: %v", err)
	}
	defer os.Remove(renamed)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("event channel closed")
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write) {
				return Result{FsnotifySupported: true}
			}
		case err := <-w.Errors:
			return unsupported("watch error: %v", err)
		case <-deadline.C:
			return unsupported("no events received within %s", timeout)
		}
	}
}
