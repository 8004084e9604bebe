package worker

import (
	"time"
)

// Job is a request to sweep every target once.
type Job struct {
	Reason string // "cron", "start", "reload", "manual"
	At     time.Time
}
