package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/ftp-reaper/internal/config"
	"github.com/raoulx24/ftp-reaper/internal/logging"
	"github.com/raoulx24/ftp-reaper/internal/mailbox"
	"github.com/raoulx24/ftp-reaper/internal/metrics"
	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/sweeper"
	"github.com/raoulx24/ftp-reaper/internal/watcher"
	"github.com/raoulx24/ftp-reaper/internal/worker"
)

var serveConfigPath string

// serveCmd keeps running, sweeping on the configured cron schedule.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sweep targets on a schedule",
	Long: `Run as a daemon. Targets are swept on schedule.cron, and once at startup
when schedule.runOnStart is set. The config is reloaded on SIGHUP and, when
configReload.enabled is set, whenever the file changes.`,
	RunE: serveHandler,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "path to config file (yaml or toml)")
}

func serveHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("ftp_reaper", nil)

	p, err := buildPool(cfg, remote.Dial, log, m)
	if err != nil {
		return err
	}

	w := worker.New(p, log, mailbox.New[worker.Job]())
	if err := w.Schedule(cfg.Schedule.Cron); err != nil {
		return err
	}

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		srv = &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", "addr", srv.Addr, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()

	if cfg.Schedule.RunOnStart {
		w.Trigger("startup")
	}

	r := &reloader{path: serveConfigPath, log: log, rec: m, worker: w}

	var watch *watcher.Watcher
	if cfg.ConfigReload.Enabled {
		watch = watcher.New(cfg.ConfigReload, serveConfigPath, log, r.reload)
		r.watch = watch
		go func() {
			if err := watch.Start(ctx); err != nil {
				log.Error("config watcher failed", "error", err)
			}
		}()
	}

	// Hot reload on SIGHUP
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGHUP)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				r.reload()
			}
		}
	}()

	log.Info("ftp-reaper started", "version", Version, "targets", p.Len(), "cron", cfg.Schedule.Cron)

	<-ctx.Done()
	log.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	wg.Wait()

	log.Info("exit complete")
	return nil
}

// reloader rebuilds the pool from the config file and swaps it into the
// worker. A broken file leaves the running configuration untouched.
type reloader struct {
	mu     sync.Mutex
	path   string
	log    logging.Logger
	rec    sweeper.Recorder
	worker *worker.Worker
	watch  *watcher.Watcher
}

func (r *reloader) reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := loadConfig(r.path)
	if err != nil {
		r.log.Error("config reload failed", "error", err)
		return
	}
	if err := r.apply(cfg); err != nil {
		r.log.Error("config reload failed", "error", err)
		return
	}
	r.log.Info("config reloaded", "targets", len(cfg.Targets))
}

func (r *reloader) apply(cfg *config.Config) error {
	p, err := buildPool(cfg, remote.Dial, r.log, r.rec)
	if err != nil {
		return err
	}
	if err := r.worker.Schedule(cfg.Schedule.Cron); err != nil {
		return err
	}
	r.worker.SetTarget(p)
	if r.watch != nil {
		r.watch.UpdateConfig(cfg.ConfigReload)
	}
	return nil
}
