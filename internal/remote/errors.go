package remote

import (
	"errors"
	"fmt"
)

// ConfigurationError is raised before any I/O for an unusable descriptor.
type ConfigurationError struct {
	Field      string
	Descriptor string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid connection %s: missing or invalid %s", e.Descriptor, e.Field)
}

// ConnectionError wraps a transport level connect or login failure.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ListError reports a directory that could not be enumerated.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// DeleteError reports a file that could not be removed.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// ErrNotConnected is returned by sessions used before Connect or after Close.
var ErrNotConnected = errors.New("session not connected")

func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

func IsConnection(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

func IsList(err error) bool {
	var e *ListError
	return errors.As(err, &e)
}

func IsDelete(err error) bool {
	var e *DeleteError
	return errors.As(err, &e)
}
