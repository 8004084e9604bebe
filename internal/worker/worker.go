// Package worker runs sweeps on a cron schedule. Triggers go through a
// single-slot mailbox so a slow sweep never piles up pending runs.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/mailbox"
	"github.com/raoulx24/ftp-reaper/internal/sweeper"
)

// Target is what a job runs, normally a *pool.Pool.
type Target interface {
	Run(ctx context.Context) ([]sweeper.Summary, error)
}

// Status describes the last completed job.
type Status struct {
	Runs      int
	Failures  int
	LastRun   time.Time
	LastError error
	Deleted   int
}

// Worker owns the cron scheduler and the loop executing jobs.
type Worker struct {
	mu     sync.RWMutex
	target Target
	spec   string
	entry  cron.EntryID
	status Status

	cron *cron.Cron
	log  logging.Logger
	mb   *mailbox.Mailbox[Job]
}

// New creates a worker. Nothing runs until Start.
func New(target Target, log logging.Logger, mb *mailbox.Mailbox[Job]) *Worker {
	if mb == nil {
		mb = mailbox.New[Job]()
	}
	return &Worker{
		target: target,
		cron:   cron.New(),
		log:    log.With("component", "worker"),
		mb:     mb,
	}
}

// Schedule replaces the cron expression. An empty spec disables scheduling.
func (w *Worker) Schedule(spec string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if spec == w.spec && (spec == "" || w.entry != 0) {
		return nil
	}

	var id cron.EntryID
	if spec != "" {
		var err error
		id, err = w.cron.AddFunc(spec, func() { w.Trigger("cron") })
		if err != nil {
			return fmt.Errorf("scheduling %q: %w", spec, err)
		}
	}
	if w.entry != 0 {
		w.cron.Remove(w.entry)
	}

	w.spec, w.entry = spec, id
	w.log.Info("schedule updated", "cron", spec)
	return nil
}

// SetTarget swaps what subsequent jobs run (config hot reload).
func (w *Worker) SetTarget(t Target) {
	w.mu.Lock()
	w.target = t
	w.mu.Unlock()
}

// Trigger requests a sweep; it coalesces with any pending request.
func (w *Worker) Trigger(reason string) {
	if w.mb.Put(Job{Reason: reason, At: time.Now()}) {
		w.log.Debug("pending sweep replaced", "reason", reason)
	}
}

// Start runs the cron scheduler and the job loop until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	w.cron.Start()
	defer func() {
		<-w.cron.Stop().Done()
		w.log.Info("worker stopped")
	}()

	for {
		job, ok := w.mb.Take(ctx)
		if !ok {
			return
		}
		if err := w.Handle(ctx, job); err != nil {
			w.log.Error("sweep failed", "reason", job.Reason, "error", err)
		}
	}
}

// Handle runs one job synchronously and records its status.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	w.mu.RLock()
	target := w.target
	w.mu.RUnlock()

	w.log.Debug("handling job", "reason", job.Reason, "queued_at", job.At)
	sums, err := target.Run(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Runs++
	w.status.LastRun = time.Now()
	w.status.LastError = err
	w.status.Deleted = 0
	if err != nil {
		w.status.Failures++
		return err
	}
	for _, s := range sums {
		w.status.Deleted += s.Deleted
	}
	return nil
}

func (w *Worker) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// Next returns the next scheduled activation, zero if unscheduled.
func (w *Worker) Next() time.Time {
	w.mu.RLock()
	id := w.entry
	w.mu.RUnlock()
	if id == 0 {
		return time.Time{}
	}
	return w.cron.Entry(id).Next
}
