package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/config"
	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/fixture"
	"congress-hq/dashboard/pkg/congress/memory"
	"congress-hq/dashboard/pkg/congress/snapshot"
	"congress-hq/dashboard/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	envFile      string
	outputFormat string
	fixturePath  string
	snapshotPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Congress policy engine console",
	Long: `Dashboard is the read console of the Congress policy engine.

It reads policies, data sources and their tables from a backend and:
  - Lists every table in one catalog, with resolved column names
  - Shapes table rows into named or positional records
  - Summarizes error and warning rows per policy
  - Serves all of the above as a JSON API with scheduled violation scans

The backend is an in-memory store, a YAML fixture file or a SQLite snapshot.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return cli.NewConfigError("env-file", err.Error())
		}
		return nil
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus CONGRESS_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from a dotenv file before reading config")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, csv)")
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "read the backend from this fixture file (overrides backend.mode)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "read the backend from this SQLite snapshot (overrides backend.mode)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the configuration and applies the backend flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}

	switch {
	case fixturePath != "" && snapshotPath != "":
		return nil, cli.NewConfigError("fixture", "--fixture and --snapshot are mutually exclusive")
	case fixturePath != "":
		cfg.Backend.Mode = config.BackendFixture
		cfg.Backend.FixturePath = fixturePath
	case snapshotPath != "":
		cfg.Backend.Mode = config.BackendSnapshot
		cfg.Backend.SnapshotPath = snapshotPath
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	config.SetConfig(cfg)
	return cfg, nil
}

// newLogger builds the logger for a command. Command output goes to stdout,
// so logs go to w.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	lc.Writer = w
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// backend is an opened backend with whatever must be released after use.
type backend struct {
	client  congress.Client
	fixture *fixture.Source
	closer  io.Closer
}

func (b *backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// openBackend opens the backend selected by cfg.Backend. In memory mode an
// existing fixture file seeds the store; otherwise it starts empty.
func openBackend(cfg *config.Config, logger *slog.Logger, rec fixture.Recorder) (*backend, error) {
	switch cfg.Backend.Mode {
	case config.BackendMemory:
		snap, err := fixture.Load(cfg.Backend.FixturePath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			snap = memory.Snapshot{}
		}
		return &backend{client: memory.New(snap)}, nil

	case config.BackendFixture:
		opts := []fixture.Option{
			fixture.WithLogger(logger),
			fixture.WithDebounce(cfg.Backend.DebounceInterval),
		}
		if rec != nil {
			opts = append(opts, fixture.WithRecorder(rec))
		}
		src, err := fixture.Open(cfg.Backend.FixturePath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open fixture: %w", err)
		}
		return &backend{client: src.Backend(), fixture: src}, nil

	case config.BackendSnapshot:
		store, err := snapshot.Open(cfg.Backend.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		return &backend{client: store, closer: store}, nil

	default:
		return nil, cli.NewConfigError("backend.mode", fmt.Sprintf("unsupported mode %q", cfg.Backend.Mode))
	}
}

// session is what a read command needs: config, logger and an open backend.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *backend
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	b, err := openBackend(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, backend: b}, nil
}

func (s *session) Close() error {
	return s.backend.Close()
}

// commandContext bounds a read command by the configured request timeout.
func (s *session) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if s.cfg.Backend.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.Backend.RequestTimeout)
	}
	return context.WithCancel(parent)
}

// render writes data to the command's stdout in the selected format.
func render(cmd *cobra.Command, data any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}
	return formatter.FormatTo(cmd.OutOrStdout(), data)
}
