// Package sweeper walks a remote directory tree and deletes every regular
// file older than the retention policy.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
)

// Recorder receives sweep metrics. A nil Recorder is allowed.
type Recorder interface {
	SweepFinished(target string, deleted int, d time.Duration, err error)
	DeleteFailed(target string)
}

// Summary is what a successful run reports.
type Summary struct {
	RunID       string
	Target      string
	Root        string
	Policy      retention.Policy
	Tree        Outcome
	Deleted     int
	Kept        int
	Directories int
	Duration    time.Duration
}

// Sweeper owns one remote target. Each Run opens its own session.
type Sweeper struct {
	mu     sync.RWMutex
	policy retention.Policy

	desc    remote.Descriptor
	dial    remote.Dialer
	now     func() time.Time
	log     logging.Logger
	metrics Recorder
}

type Option func(*Sweeper)

// WithPolicy sets the initial retention policy.
func WithPolicy(p retention.Policy) Option {
	return func(s *Sweeper) { s.policy = p }
}

// WithClock replaces time.Now for policy evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func WithMetrics(r Recorder) Option {
	return func(s *Sweeper) { s.metrics = r }
}

// New validates the descriptor before any I/O and returns a sweeper with an
// unset policy unless WithPolicy is given.
func New(desc remote.Descriptor, dial remote.Dialer, log logging.Logger, opts ...Option) (*Sweeper, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if dial == nil {
		dial = remote.Dial
	}
	if log == nil {
		log = logging.Nop()
	}

	s := &Sweeper{
		desc: desc.WithDefaults(),
		dial: dial,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = log.With("target", s.desc.String())
	return s, nil
}

func (s *Sweeper) Descriptor() remote.Descriptor {
	return s.desc
}

// SetPolicy replaces the retention policy. A run already in progress keeps
// the policy it started with.
func (s *Sweeper) SetPolicy(p retention.Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

func (s *Sweeper) Policy() retention.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// Run connects, sweeps the tree from the descriptor root and closes the
// session on every exit path. Any list or delete failure anywhere in the
// tree aborts the run and is returned unmodified.
func (s *Sweeper) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	runID := uuid.NewString()
	policy := s.Policy()
	log := s.log.With("run_id", runID)

	defer func() {
		if s.metrics != nil {
			s.metrics.SweepFinished(s.desc.String(), sum.Deleted, time.Since(start), err)
		}
	}()

	sess, err := s.dial(s.desc)
	if err != nil {
		log.Error("cannot create session", "error", err)
		return Summary{}, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("closing session", "error", cerr)
		}
		log.Info("connection closed", "host", s.desc.Host)
	}()

	if err := sess.Connect(ctx); err != nil {
		log.Error("connection failed", "error", err)
		return Summary{}, err
	}
	log.Info("connection established", "host", s.desc.Host, "policy", policy.String())

	r := &run{
		sess:    sess,
		desc:    s.desc,
		policy:  policy,
		now:     s.now,
		log:     log,
		metrics: s.metrics,
	}

	tree, err := r.reap(ctx, s.desc.Path)
	if err != nil {
		log.Error("sweep failed", "error", err)
		return Summary{}, err
	}

	sum = Summary{
		RunID:       runID,
		Target:      s.desc.String(),
		Root:        s.desc.Path,
		Policy:      policy,
		Tree:        tree,
		Deleted:     tree.CountDeleted(),
		Kept:        tree.CountFiles() - tree.CountDeleted(),
		Directories: tree.CountDirectories(),
		Duration:    time.Since(start),
	}
	log.Info(deletedMessage(sum.Deleted), "deleted", sum.Deleted, "kept", sum.Kept, "duration", sum.Duration)
	return sum, nil
}

func deletedMessage(n int) string {
	if n == 1 {
		return "1 file deleted"
	}
	return fmt.Sprintf("%d files deleted", n)
}
