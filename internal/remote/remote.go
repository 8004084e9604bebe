// Package remote defines the session abstraction the sweeper drives.
// A Session wraps one remote connection and exposes the two primitive
// operations a sweep needs: shallow listing and single-file deletion.
package remote

import (
	"context"
	"fmt"
	"net"
	"path"
	"strconv"
	"time"
)

const (
	SchemeFTP  = "ftp"
	SchemeFile = "file"

	DefaultFTPPort = 21
	DefaultTimeout = 30 * time.Second
)

// Descriptor identifies one remote target. It is read-only once a sweep starts.
type Descriptor struct {
	Scheme   string
	Host     string
	Port     int
	User     string
	Password string
	Path     string
	Timeout  time.Duration
}

// Validate reports a ConfigurationError for descriptors that can never connect.
func (d Descriptor) Validate() error {
	if d.Host == "" {
		return &ConfigurationError{Field: "host", Descriptor: d.String()}
	}
	switch d.Scheme {
	case "", SchemeFTP, SchemeFile:
	default:
		return &ConfigurationError{Field: "scheme", Descriptor: d.String()}
	}
	if d.Port < 0 || d.Port > 65535 {
		return &ConfigurationError{Field: "port", Descriptor: d.String()}
	}
	return nil
}

// WithDefaults fills scheme, port, root path and timeout.
func (d Descriptor) WithDefaults() Descriptor {
	if d.Scheme == "" {
		d.Scheme = SchemeFTP
	}
	if d.Scheme == SchemeFTP && d.Port == 0 {
		d.Port = DefaultFTPPort
	}
	if d.Path == "" {
		d.Path = "/"
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	return d
}

// Addr returns host:port for network schemes.
func (d Descriptor) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// URL renders a location inside the target, e.g. ftp://host/dir/file.
func (d Descriptor) URL(p string) string {
	scheme := d.Scheme
	if scheme == "" {
		scheme = SchemeFTP
	}
	return fmt.Sprintf("%s://%s%s", scheme, d.Host, path.Clean("/"+p))
}

// String never includes the password.
func (d Descriptor) String() string {
	user := ""
	if d.User != "" {
		user = d.User + "@"
	}
	scheme := d.Scheme
	if scheme == "" {
		scheme = SchemeFTP
	}
	host := d.Host
	if d.Port != 0 {
		host = d.Addr()
	}
	return fmt.Sprintf("%s://%s%s%s", scheme, user, host, d.Path)
}

// Kind classifies a listing entry.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is one node of a shallow directory listing.
// Size, Owner, Group and Target are carried through but never interpreted.
type Entry struct {
	Name    string
	Kind    Kind
	ModTime time.Time
	Size    int64
	Owner   string
	Group   string
	Target  string
}

// Session is one remote connection. Implementations must be safe for
// concurrent use: the sweeper issues sibling operations in parallel.
type Session interface {
	// Connect opens the session. A failed session is not reusable.
	Connect(ctx context.Context) error
	// List returns the entries of dir without "." and "..".
	List(ctx context.Context, dir string) ([]Entry, error)
	// Delete removes exactly one file by its absolute path.
	Delete(ctx context.Context, file string) error
	// Close is idempotent.
	Close() error
}

// Dialer creates an unconnected session for a descriptor.
type Dialer func(d Descriptor) (Session, error)

// Dial picks the backend by descriptor scheme.
func Dial(d Descriptor) (Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.WithDefaults()

	switch d.Scheme {
	case SchemeFTP:
		return NewFTPSession(d), nil
	case SchemeFile:
		return NewLocalSession(d), nil
	default:
		return nil, &ConfigurationError{Field: "scheme", Descriptor: d.String()}
	}
}

// Join resolves name inside dir as an absolute, cleaned path.
func Join(dir, name string) string {
	return path.Join("/", dir, name)
}

func isPseudo(name string) bool {
	return name == "." || name == ".." || name == ""
}
