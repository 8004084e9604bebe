package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/jlaffaye/ftp"
)

// ftpConn is the subset of *ftp.ServerConn a session uses.
type ftpConn interface {
	Login(user, password string) error
	List(path string) ([]*ftp.Entry, error)
	Delete(path string) error
	Quit() error
}

type ftpDialFunc func(ctx context.Context, d Descriptor) (ftpConn, error)

// FTPSession is a Session over a single FTP control connection.
// FTP cannot interleave commands on one connection, so calls are serialized.
type FTPSession struct {
	desc Descriptor
	dial ftpDialFunc

	mu     sync.Mutex
	conn   ftpConn
	closed bool
	once   sync.Once
}

// NewFTPSession returns an unconnected session for d.
func NewFTPSession(d Descriptor) *FTPSession {
	return &FTPSession{desc: d.WithDefaults(), dial: dialServerConn}
}

func dialServerConn(ctx context.Context, d Descriptor) (ftpConn, error) {
	return ftp.Dial(d.Addr(), ftp.DialWithContext(ctx), ftp.DialWithTimeout(d.Timeout))
}

func (s *FTPSession) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &ConnectionError{Host: s.desc.Host, Err: ErrNotConnected}
	}
	if s.conn != nil {
		return nil
	}

	conn, err := s.dial(ctx, s.desc)
	if err != nil {
		return &ConnectionError{Host: s.desc.Host, Err: err}
	}

	user, pass := s.desc.User, s.desc.Password
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return &ConnectionError{Host: s.desc.Host, Err: fmt.Errorf("login as %s: %w", user, err)}
	}

	s.conn = conn
	return nil
}

func (s *FTPSession) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ListError{Path: dir, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, &ListError{Path: dir, Err: ErrNotConnected}
	}

	raw, err := s.conn.List(dir)
	if err != nil {
		return nil, &ListError{Path: dir, Err: err}
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e == nil || isPseudo(e.Name) {
			continue
		}
		entries = append(entries, fromFTPEntry(e))
	}
	return entries, nil
}

func (s *FTPSession) Delete(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return &DeleteError{Path: file, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return &DeleteError{Path: file, Err: ErrNotConnected}
	}
	if err := s.conn.Delete(file); err != nil {
		return &DeleteError{Path: file, Err: err}
	}
	return nil
}

func (s *FTPSession) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed = true
		if s.conn != nil {
			err = s.conn.Quit()
			s.conn = nil
		}
	})
	return err
}

func fromFTPEntry(e *ftp.Entry) Entry {
	kind := KindOther
	switch e.Type {
	case ftp.EntryTypeFile:
		kind = KindFile
	case ftp.EntryTypeFolder:
		kind = KindDirectory
	}
	return Entry{
		Name:    e.Name,
		Kind:    kind,
		ModTime: e.Time,
		Size:    int64(e.Size),
		Target:  e.Target,
	}
}
