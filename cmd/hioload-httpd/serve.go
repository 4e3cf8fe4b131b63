package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/internal/concurrency"
	"github.com/momentics/hioload-httpd/internal/logging"
	"github.com/momentics/hioload-httpd/router"
	"github.com/momentics/hioload-httpd/server"
	"github.com/momentics/hioload-httpd/service"
	"github.com/momentics/hioload-httpd/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

// flagKeys maps serve flags onto config keys.
var flagKeys = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"workers":      "server.workers",
	"read-timeout": "server.read_timeout",
	"db":           "store.path",
	"log-file":     "log.file",
	"log-level":    "log.level",
	"metrics":      "metrics.expose",
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "0.0.0.0", "Address to bind to")
	f.Int("port", 8080, "Port to listen on")
	f.Int("workers", 16, "Worker pool size")
	f.Duration("read-timeout", 0, "Per-connection read timeout (0 waits forever)")
	f.String("db", "user.db", "SQLite database path; empty keeps users in memory")
	f.String("log-file", "server.log", "Log file, appended to")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.Bool("metrics", false, "Expose GET /metrics")
	rootCmd.AddCommand(serveCmd)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := control.NewViper(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := control.LoadConfig(v)
	if err != nil {
		return err
	}

	level := zap.NewAtomicLevel()
	log, flush, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cfg.Log.Console,
		Dynamic: &level,
	})
	if err != nil {
		return err
	}
	defer flush()

	users, err := openStore(cfg.Store, log)
	if err != nil {
		log.Error("store setup failed", zap.Error(err))
		return err
	}
	defer users.Close()

	metrics := control.NewMetricsRegistry()
	metrics.Set("version", version)
	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)

	workers := concurrency.NewWorkerPool(cfg.Server.Workers, concurrency.WithLogger(log.Named("pool")))
	probes.RegisterProbe("pool", func() any { return workers.Stats() })

	svc := &service.Context{Users: users, Log: log.Named("service")}
	if cfg.Metrics.Expose {
		svc.Metrics, svc.Probes = metrics, probes
	}
	r := router.New(router.WithLogger(log.Named("router")))
	svc.Install(r)
	for _, k := range r.Routes() {
		log.Debug("route", zap.Stringer("key", k))
	}

	if configFile != "" {
		var hooks control.ReloadHooks
		hooks.Register(func(c *control.Config) {
			if err := logging.SetLevel(level, c.Log.Level); err != nil {
				log.Warn("reload: log level rejected", zap.Error(err))
				return
			}
			log.Info("reload: log level applied", zap.String("level", c.Log.Level))
		})
		hooks.Watch(v, func(err error) { log.Warn("reload: config rejected", zap.Error(err)) })
	}

	srv := server.New(cfg.Server, r,
		server.WithLogger(log.Named("server")),
		server.WithExecutor(workers),
		server.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.ListenAndServe(gctx)
		if errors.Is(err, api.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func openStore(cfg control.StoreConfig, log *zap.Logger) (store.UserStore, error) {
	var backend store.UserStore
	if cfg.Path == "" {
		log.Warn("no database path configured, users are kept in memory")
		backend = store.NewMemoryStore()
	} else {
		s, err := store.OpenSQLite(cfg.Path,
			store.WithBcryptCost(cfg.BcryptCost),
			store.WithStoreLogger(log.Named("store")),
		)
		if err != nil {
			return nil, err
		}
		backend = s
	}
	return store.WithBreaker(backend, store.BreakerConfig{
		TripCount: cfg.Breaker.TripCount,
		Timeout:   cfg.Breaker.Timeout,
	}, log.Named("breaker")), nil
}
