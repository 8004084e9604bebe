package watcher

import (
	"context"
	"time"
)

const defaultPollInterval = 5 * time.Second

// StartPolling calls detect() repeatedly. The interval is reread after
// every check, so UpdateConfig applies from the next round.
func (w *Watcher) StartPolling(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			w.detect()
			timer.Reset(w.pollInterval())
		}
	}
}

func (w *Watcher) pollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.interval <= 0 {
		return defaultPollInterval
	}
	return w.interval
}
