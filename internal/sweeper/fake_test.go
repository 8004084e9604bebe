package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/raoulx24/ftp-reaper/internal/remote"
)

var (
	ancient = time.Date(2012, 5, 19, 0, 0, 0, 0, time.UTC)
	names   = []string{"lorem.js", "ipsum.json", "dolor.yaml", "sit.zip", "amet.sql", "elit.jpg", "diam.png", "luctus.gif", "nullam.jpeg", "vehicula.zip"}
)

func oldFiles(n int) []remote.Entry {
	out := make([]remote.Entry, n)
	for i := range out {
		out[i] = remote.Entry{
			Name:    names[i%len(names)],
			Kind:    remote.KindFile,
			ModTime: ancient,
			Size:    4096,
			Owner:   "root",
			Group:   "root",
		}
	}
	return out
}

func freshFile(name string) remote.Entry {
	return remote.Entry{Name: name, Kind: remote.KindFile, ModTime: time.Now(), Size: 4096}
}

func dir(name string) remote.Entry {
	return remote.Entry{Name: name, Kind: remote.KindDirectory, ModTime: ancient, Size: 4096}
}

// fakeSession is an in-memory remote tree recording every call.
type fakeSession struct {
	mu sync.Mutex

	tree       map[string][]remote.Entry
	listErr    map[string]error
	deleteErr  map[string]error
	connectErr error
	onList     func(ctx context.Context, dir string)

	connects int
	closes   int
	listed   []string
	deleted  []string
}

func newFake(tree map[string][]remote.Entry) *fakeSession {
	return &fakeSession{
		tree:      tree,
		listErr:   map[string]error{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeSession) dialer() remote.Dialer {
	return func(remote.Descriptor) (remote.Session, error) { return f, nil }
}

func (f *fakeSession) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeSession) List(ctx context.Context, dir string) ([]remote.Entry, error) {
	if f.onList != nil {
		f.onList(ctx, dir)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, dir)
	if err := ctx.Err(); err != nil {
		return nil, &remote.ListError{Path: dir, Err: err}
	}
	if err, ok := f.listErr[dir]; ok {
		return nil, err
	}
	entries, ok := f.tree[dir]
	if !ok {
		return nil, &remote.ListError{Path: dir, Err: context.DeadlineExceeded}
	}
	return append([]remote.Entry(nil), entries...), nil
}

func (f *fakeSession) Delete(ctx context.Context, file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, file)
	if err, ok := f.deleteErr[file]; ok {
		return err
	}
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeSession) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type recorder struct {
	mu       sync.Mutex
	finished []error
	deleted  int
	failed   int
}

func (r *recorder) SweepFinished(target string, deleted int, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, err)
	r.deleted += deleted
}

func (r *recorder) DeleteFailed(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}
