// Package pool runs independent sweepers side by side.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
	"github.com/raoulx24/ftp-reaper/internal/sweeper"
)

// Runner is one registered sweep target.
type Runner interface {
	Run(ctx context.Context) (sweeper.Summary, error)
	SetPolicy(p retention.Policy)
	Policy() retention.Policy
}

// member is a registered runner. Pinned runners keep their own policy.
type member struct {
	runner Runner
	pinned bool
}

// Pool holds one sweeper per watched descriptor and a default policy that it
// pushes to every runner not pinned to its own policy.
type Pool struct {
	mu      sync.RWMutex
	members []member
	policy  retention.Policy

	dial    remote.Dialer
	log     logging.Logger
	metrics sweeper.Recorder
}

type Option func(*Pool)

func WithMetrics(r sweeper.Recorder) Option {
	return func(p *Pool) { p.metrics = r }
}

// New creates an empty pool. A nil dialer means remote.Dial.
func New(dial remote.Dialer, log logging.Logger, opts ...Option) *Pool {
	if dial == nil {
		dial = remote.Dial
	}
	if log == nil {
		log = logging.Nop()
	}
	p := &Pool{dial: dial, log: log.With("component", "pool")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch registers one sweeper per descriptor. Every descriptor is validated
// first; on error nothing is registered.
func (p *Pool) Watch(descs ...remote.Descriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	created := make([]member, 0, len(descs))
	for _, d := range descs {
		opts := []sweeper.Option{sweeper.WithPolicy(p.policy)}
		if p.metrics != nil {
			opts = append(opts, sweeper.WithMetrics(p.metrics))
		}
		s, err := sweeper.New(d, p.dial, p.log, opts...)
		if err != nil {
			return err
		}
		created = append(created, member{runner: s})
	}

	p.members = append(p.members, created...)
	for _, d := range descs {
		p.log.Info("watching target", "target", d.WithDefaults().String())
	}
	return nil
}

// Add registers an already built runner. Like watched sweepers it follows
// the pool default on every SetMaxAge.
func (p *Pool) Add(r Runner) {
	p.mu.Lock()
	p.members = append(p.members, member{runner: r})
	p.mu.Unlock()
}

// AddPinned registers a runner that keeps its own policy; SetMaxAge skips it.
func (p *Pool) AddPinned(r Runner) {
	p.mu.Lock()
	p.members = append(p.members, member{runner: r, pinned: true})
	p.mu.Unlock()
}

// SetMaxAge sets the pool default and pushes it to every runner that is not
// pinned.
func (p *Pool) SetMaxAge(policy retention.Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.policy = policy
	for _, m := range p.members {
		if !m.pinned {
			m.runner.SetPolicy(policy)
		}
	}
}

// SetMaxAgeString parses a human readable age ("3 days") first.
func (p *Pool) SetMaxAgeString(s string) error {
	policy, err := retention.ParseMaxAge(s)
	if err != nil {
		return err
	}
	p.SetMaxAge(policy)
	return nil
}

func (p *Pool) MaxAge() retention.Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policy
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// Run starts every runner concurrently and waits for all of them. Siblings
// of a failing runner are not canceled; the first error observed is returned
// and no summaries are reported.
func (p *Pool) Run(ctx context.Context) ([]sweeper.Summary, error) {
	p.mu.RLock()
	runners := make([]Runner, len(p.members))
	for i, m := range p.members {
		runners[i] = m.runner
	}
	p.mu.RUnlock()

	start := time.Now()
	p.log.Info("starting sweep", "targets", len(runners))

	summaries := make([]sweeper.Summary, len(runners))

	var g errgroup.Group
	for i, r := range runners {
		g.Go(func() error {
			sum, err := r.Run(ctx)
			if err != nil {
				return err
			}
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.log.Error("sweep failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	total := 0
	for _, s := range summaries {
		total += s.Deleted
	}
	p.log.Info(fmt.Sprintf("sweep complete, %d targets", len(runners)), "deleted", total, "duration", time.Since(start))
	return summaries, nil
}
