package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/config"
	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/monitor"
	"congress-hq/dashboard/pkg/server"
	"congress-hq/dashboard/pkg/telemetry/health"
	"congress-hq/dashboard/pkg/telemetry/metrics"
	"congress-hq/dashboard/pkg/violations"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start the dashboard JSON API with the configured backend.

The server exposes the catalog, table rows, violations, data sources and
rules under /api/v1, health probes, build information and Prometheus
metrics. When the monitor is enabled, violation scans run on its cron
schedule and are recorded in the history store.

Examples:
  # Start with a config file
  dashboard serve --config /etc/congress/dashboard.yaml

  # Serve a fixture and reload it on change
  CONGRESS_BACKEND_WATCH=true dashboard serve --fixture fixture.yaml

  # Validate config without starting the server
  dashboard serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("config", err.Error())
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		cmd.Println("✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	b, err := openBackend(cfg, logger, collector)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer b.Close()

	if b.fixture != nil && cfg.Backend.Watch {
		go func() {
			if err := b.fixture.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("fixture watch stopped", "error", err)
			}
		}()
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("backend", health.BackendCheck(b.client))

	var store history.Store
	if cfg.Monitor.Enabled {
		store, err = openHistory(&cfg.Monitor, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		checker.RegisterCheck("history", health.PingCheck(store))

		scanner := violations.NewAggregator(b.client, collector, logger)
		mon := monitor.New(scanner, store, monitor.Config{
			Schedule:       cfg.Monitor.Schedule,
			RetentionCount: cfg.Monitor.RetentionCount,
		}, monitor.WithRecorder(collector), monitor.WithLogger(logger))
		if err := mon.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer mon.Stop()
		if next := mon.NextRun(); next != nil {
			logger.Debug("violation monitor started", "next_scan", next)
		}
	}

	deps := server.Dependencies{
		Backend:           b.client,
		History:           store,
		Health:            checker,
		LivenessPath:      cfg.Telemetry.Health.LivenessPath,
		ReadinessPath:     cfg.Telemetry.Health.ReadinessPath,
		Recorder:          collector,
		CatalogRecorder:   collector,
		ViolationRecorder: collector,
		RequestTimeout:    cfg.Backend.RequestTimeout,
		Version:           Version,
		Commit:            GitCommit,
		BuildTime:         BuildDate,
		Logger:            logger,
	}
	if cfg.Telemetry.Metrics.Enabled {
		deps.Metrics = collector.Handler()
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	printBanner(cmd, cfg)

	srv := server.NewServer(&cfg.Server, server.NewRouter(deps), logger)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	cmd.Println("✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	cmd.Printf("Congress dashboard v%s\n", Version)
	switch cfg.Backend.Mode {
	case config.BackendFixture:
		cmd.Printf("✓ Backend: fixture %s (watch=%t)\n", cfg.Backend.FixturePath, cfg.Backend.Watch)
	case config.BackendSnapshot:
		cmd.Printf("✓ Backend: snapshot %s\n", cfg.Backend.SnapshotPath)
	default:
		cmd.Printf("✓ Backend: %s\n", cfg.Backend.Mode)
	}
	if cfg.Monitor.Enabled {
		cmd.Printf("✓ Monitor: %q, history %s\n", cfg.Monitor.Schedule, cfg.Monitor.HistoryBackend)
	}
	addr := cfg.Server.ListenAddress
	cmd.Printf("✓ API: http://%s/api/v1\n", addr)
	cmd.Printf("✓ Health endpoint: http://%s%s\n", addr, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.Enabled {
		cmd.Printf("✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	cmd.Println("\nPress Ctrl+C to stop")
}
