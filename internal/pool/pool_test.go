package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
	"github.com/raoulx24/ftp-reaper/internal/sweeper"
)

type stubRunner struct {
	mu     sync.Mutex
	policy retention.Policy
	calls  atomic.Int32
	sum    sweeper.Summary
	err    error
	delay  time.Duration
	done   atomic.Bool
}

func (s *stubRunner) Run(ctx context.Context) (sweeper.Summary, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.done.Store(true)
	return s.sum, s.err
}

func (s *stubRunner) SetPolicy(p retention.Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

func (s *stubRunner) Policy() retention.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

func TestWatch(t *testing.T) {
	p := New(nil, logging.Nop())
	assert.Equal(t, 0, p.Len())

	require.NoError(t, p.Watch(remote.Descriptor{Host: "host"}))
	assert.Equal(t, 1, p.Len())

	require.NoError(t, p.Watch(remote.Descriptor{Host: "1"}, remote.Descriptor{Host: "2"}))
	assert.Equal(t, 3, p.Len())
}

func TestWatch_InvalidDescriptorRegistersNothing(t *testing.T) {
	p := New(nil, logging.Nop())

	err := p.Watch(remote.Descriptor{Host: "ok"}, remote.Descriptor{Port: 21})
	require.Error(t, err)
	assert.True(t, remote.IsConfiguration(err))
	assert.Equal(t, 0, p.Len())
}

func TestWatch_AppliesPoolPolicy(t *testing.T) {
	p := New(nil, logging.Nop())
	p.SetMaxAge(retention.MaxAge(200 * time.Millisecond))

	require.NoError(t, p.Watch(remote.Descriptor{Host: "host"}))

	d, ok := p.members[0].runner.Policy().MaxAge()
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, d)
}

func TestSetMaxAge_UpdatesRegistered(t *testing.T) {
	p := New(nil, logging.Nop())
	require.NoError(t, p.Watch(remote.Descriptor{Host: "host"}))
	stub := &stubRunner{}
	p.Add(stub)

	require.NoError(t, p.SetMaxAgeString("3 days"))

	want := 259200000 * time.Millisecond
	for _, m := range p.members {
		d, ok := m.runner.Policy().MaxAge()
		require.True(t, ok)
		assert.Equal(t, want, d)
	}
	d, _ := p.MaxAge().MaxAge()
	assert.Equal(t, want, d)

	require.Error(t, p.SetMaxAgeString("whenever"))
}

func TestSetMaxAge_SkipsPinned(t *testing.T) {
	p := New(nil, logging.Nop())
	require.NoError(t, p.Watch(remote.Descriptor{Host: "shared"}))

	own := retention.MaxAge(time.Hour)
	pinned := &stubRunner{}
	pinned.SetPolicy(own)
	p.AddPinned(pinned)

	require.NoError(t, p.SetMaxAgeString("3 days"))
	p.SetMaxAge(retention.MaxAge(time.Minute))

	assert.Equal(t, own, pinned.Policy())
	assert.Equal(t, retention.MaxAge(time.Minute), p.members[0].runner.Policy())
	assert.Equal(t, 2, p.Len())
}

func TestRun_AllSucceed(t *testing.T) {
	p := New(nil, logging.Nop())
	stubs := []*stubRunner{
		{sum: sweeper.Summary{Target: "a", Deleted: 1}},
		{sum: sweeper.Summary{Target: "b", Deleted: 2}},
		{sum: sweeper.Summary{Target: "c", Deleted: 3}},
	}
	for _, s := range stubs {
		p.Add(s)
	}

	sums, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, "a", sums[0].Target)
	assert.Equal(t, "c", sums[2].Target)
	for _, s := range stubs {
		assert.EqualValues(t, 1, s.calls.Load())
	}
}

func TestRun_OneFails(t *testing.T) {
	delErr := &remote.DeleteError{Path: "/x", Err: errors.New("550")}
	slow := &stubRunner{delay: 50 * time.Millisecond}
	p := New(nil, logging.Nop())
	p.Add(&stubRunner{})
	p.Add(&stubRunner{err: delErr})
	p.Add(slow)

	sums, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Same(t, delErr, err)
	assert.Nil(t, sums)
	assert.True(t, slow.done.Load(), "siblings run to completion")
}

func TestRun_Empty(t *testing.T) {
	sums, err := New(nil, logging.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestRun_LocalTargetsEndToEnd(t *testing.T) {
	old := time.Date(2012, 5, 19, 0, 0, 0, 0, time.UTC)
	fs := afero.NewMemMapFs()
	for _, name := range []string{"/a/x.log", "/a/y.log", "/b/sub/z.log"} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0o644))
		require.NoError(t, fs.Chtimes(name, old, old))
	}
	require.NoError(t, afero.WriteFile(fs, "/b/fresh.log", []byte("x"), 0o644))

	dial := func(d remote.Descriptor) (remote.Session, error) {
		return remote.NewLocalSessionWithFS(d, fs), nil
	}

	p := New(dial, logging.Nop())
	require.NoError(t, p.Watch(
		remote.Descriptor{Scheme: remote.SchemeFile, Host: "a", Path: "/a"},
		remote.Descriptor{Scheme: remote.SchemeFile, Host: "b", Path: "/b"},
	))
	p.SetMaxAge(retention.MaxAge(500 * time.Millisecond))

	sums, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "[true true]", sums[0].Tree.String())
	assert.Equal(t, "[false [true]]", sums[1].Tree.String())

	for _, name := range []string{"/a/x.log", "/a/y.log", "/b/sub/z.log"} {
		exists, err := afero.Exists(fs, name)
		require.NoError(t, err)
		assert.False(t, exists, name)
	}
	exists, err := afero.Exists(fs, "/b/fresh.log")
	require.NoError(t, err)
	assert.True(t, exists)
}
