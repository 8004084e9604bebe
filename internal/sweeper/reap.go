package sweeper

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
)

// run holds the state of one sweep; the policy is fixed for its lifetime.
type run struct {
	sess    remote.Session
	desc    remote.Descriptor
	policy  retention.Policy
	now     func() time.Time
	log     logging.Logger
	metrics Recorder
}

// reap lists dir and processes all entries concurrently. Results keep the
// listing order. The first failure cancels siblings that have not yet
// deleted anything and is returned as is.
func (r *run) reap(ctx context.Context, dir string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	r.log.Debug("listing directory", "path", dir)
	entries, err := r.sess.List(ctx, dir)
	if err != nil {
		return Outcome{}, err
	}

	results := make([]Outcome, len(entries))
	present := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			o, ok, err := r.process(gctx, dir, entry)
			if err != nil {
				return err
			}
			results[i], present[i] = o, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	children := make([]Outcome, 0, len(entries))
	for i, o := range results {
		if present[i] {
			children = append(children, o)
		}
	}
	return Branch(children...), nil
}

// process returns the outcome of one entry. ok is false for kinds that are
// neither files nor directories; they do not appear in the tree.
func (r *run) process(ctx context.Context, dir string, e remote.Entry) (Outcome, bool, error) {
	p := remote.Join(dir, e.Name)

	switch e.Kind {
	case remote.KindDirectory:
		o, err := r.reap(ctx, p)
		return o, true, err

	case remote.KindFile:
		if !r.policy.Expired(e.ModTime, r.now()) {
			return Leaf(false), true, nil
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, false, err
		}

		r.log.Info("deleting file", "url", r.desc.URL(p), "modified", e.ModTime)
		if err := r.sess.Delete(ctx, p); err != nil {
			if r.metrics != nil {
				r.metrics.DeleteFailed(r.desc.String())
			}
			return Outcome{}, false, err
		}
		return Leaf(true), true, nil

	default:
		r.log.Debug("ignoring entry", "path", p, "kind", e.Kind.String())
		return Outcome{}, false, nil
	}
}
