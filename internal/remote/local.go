package remote

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
)

// LocalSession serves a "file" target from an afero filesystem. It is the
// backend for local retention sweeps and for tests running on MemMapFs.
type LocalSession struct {
	desc Descriptor
	fs   afero.Fs

	connected atomic.Bool
	once      sync.Once
}

// NewLocalSession sweeps the host operating system filesystem.
func NewLocalSession(d Descriptor) *LocalSession {
	return NewLocalSessionWithFS(d, afero.NewOsFs())
}

// NewLocalSessionWithFS sweeps fs.
func NewLocalSessionWithFS(d Descriptor, fs afero.Fs) *LocalSession {
	return &LocalSession{desc: d.WithDefaults(), fs: fs}
}

func (s *LocalSession) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ConnectionError{Host: s.desc.Host, Err: err}
	}

	st, err := s.fs.Stat(s.desc.Path)
	if err != nil {
		return &ConnectionError{Host: s.desc.Host, Err: err}
	}
	if !st.IsDir() {
		return &ConnectionError{Host: s.desc.Host, Err: fmt.Errorf("%s is not a directory", s.desc.Path)}
	}

	s.connected.Store(true)
	return nil
}

func (s *LocalSession) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ListError{Path: dir, Err: err}
	}
	if !s.connected.Load() {
		return nil, &ListError{Path: dir, Err: ErrNotConnected}
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, &ListError{Path: dir, Err: err}
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if isPseudo(info.Name()) {
			continue
		}
		entries = append(entries, fromFileInfo(info))
	}
	return entries, nil
}

func (s *LocalSession) Delete(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return &DeleteError{Path: file, Err: err}
	}
	if !s.connected.Load() {
		return &DeleteError{Path: file, Err: ErrNotConnected}
	}

	st, err := s.fs.Stat(file)
	if err != nil {
		return &DeleteError{Path: file, Err: err}
	}
	if !st.Mode().IsRegular() {
		return &DeleteError{Path: file, Err: fmt.Errorf("not a regular file")}
	}
	if err := s.fs.Remove(file); err != nil {
		return &DeleteError{Path: file, Err: err}
	}
	return nil
}

func (s *LocalSession) Close() error {
	s.once.Do(func() {
		s.connected.Store(false)
	})
	return nil
}

func fromFileInfo(info os.FileInfo) Entry {
	kind := KindOther
	switch {
	case info.IsDir():
		kind = KindDirectory
	case info.Mode().IsRegular():
		kind = KindFile
	}

	owner, group := ownerOf(info)
	return Entry{
		Name:    info.Name(),
		Kind:    kind,
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Owner:   owner,
		Group:   group,
	}
}
