package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/config"
	"congress-hq/dashboard/pkg/history"
)

var historyFlags struct {
	limit  int
	since  string
	policy string
}

var historyCmd = &cobra.Command{
	Use:   "history [scan-id]",
	Short: "List recorded violation scans",
	Long: `List the violation scans recorded by "dashboard serve", newest first, or
show one scan in full. Only the sqlite history backend outlives the server.

Examples:
  dashboard history --limit 10
  dashboard history --policy classification --since 2026-10-01T00:00:00Z
  dashboard history 3f0c6a1e-4b8e-4a8f-9c39-0f2e1bfc1d55 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of scans")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only scans started at or after this RFC3339 time")
	historyCmd.Flags().StringVar(&historyFlags.policy, "policy", "", "only scans where this policy had violations")
}

// openHistory opens the history store selected by the monitor config.
func openHistory(cfg *config.MonitorConfig, logger *slog.Logger) (history.Store, error) {
	switch cfg.HistoryBackend {
	case config.HistoryMemory:
		return history.NewMemoryStore(), nil
	case config.HistorySQLite:
		sc := history.DefaultSQLiteConfig()
		sc.Path = cfg.HistoryPath
		store, err := history.NewSQLiteStore(sc, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, cli.NewConfigError("monitor.history_backend", fmt.Sprintf("unsupported backend %q", cfg.HistoryBackend))
	}
}

type scansView []*history.Scan

func (v scansView) Table() cli.Table {
	t := cli.Table{Headers: []string{"id", "started_at", "duration", "policies", "errors", "warnings", "skipped"}}
	for _, s := range v {
		t.Rows = append(t.Rows, []string{
			s.ID,
			s.StartedAt.Format(time.RFC3339),
			s.Duration.String(),
			strconv.Itoa(len(s.Summaries)),
			strconv.Itoa(s.Errors()),
			strconv.Itoa(s.Warnings()),
			strconv.Itoa(len(s.Skipped)),
		})
	}
	return t
}

type scanView struct {
	*history.Scan
}

func (v scanView) Table() cli.Table {
	t := cli.Table{Headers: []string{"policy", "id", "errors", "warnings"}}
	for _, s := range v.Summaries {
		t.Rows = append(t.Rows, []string{s.Name, s.PolicyID, strconv.Itoa(s.Errors()), strconv.Itoa(s.Warnings())})
	}
	return t
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	query := history.Query{Limit: historyFlags.limit, Policy: historyFlags.policy}
	if historyFlags.since != "" {
		since, err := time.Parse(time.RFC3339, historyFlags.since)
		if err != nil {
			return cli.NewConfigError("since", fmt.Sprintf("%q is not an RFC3339 time", historyFlags.since))
		}
		query.Since = since
	}

	store, err := openHistory(&cfg.Monitor, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if len(args) == 1 {
		scan, err := store.Get(ctx, args[0])
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		return render(cmd, scanView{Scan: scan})
	}

	scans, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	return render(cmd, scansView(scans))
}
