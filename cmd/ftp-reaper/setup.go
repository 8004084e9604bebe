package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/raoulx24/ftp-reaper/internal/config"
	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/pool"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
	"github.com/raoulx24/ftp-reaper/internal/sweeper"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %w", path, errors.Join(errs...))
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: os.Stderr,
	})
}

// buildPool registers every target. Targets with their own maxAge get a
// sweeper with that policy; the rest share the pool default.
func buildPool(cfg *config.Config, dial remote.Dialer, log logging.Logger, rec sweeper.Recorder) (*pool.Pool, error) {
	var opts []pool.Option
	if rec != nil {
		opts = append(opts, pool.WithMetrics(rec))
	}
	p := pool.New(dial, log, opts...)

	def, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	p.SetMaxAge(def)

	var shared []remote.Descriptor
	for _, t := range cfg.Targets {
		if t.MaxAge == "" {
			shared = append(shared, t.Descriptor())
			continue
		}

		policy, err := retention.ParseMaxAge(t.MaxAge)
		if err != nil {
			return nil, err
		}
		sopts := []sweeper.Option{sweeper.WithPolicy(policy)}
		if rec != nil {
			sopts = append(sopts, sweeper.WithMetrics(rec))
		}
		s, err := sweeper.New(t.Descriptor(), dial, log, sopts...)
		if err != nil {
			return nil, err
		}
		p.AddPinned(s)
	}

	if err := p.Watch(shared...); err != nil {
		return nil, err
	}
	return p, nil
}
