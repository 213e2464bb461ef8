package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/console"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every data source with its runtime status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusView []console.DatasourceStatus

func (v statusView) Table() cli.Table {
	t := cli.Table{Headers: []string{"name", "driver", "enabled", "initialized", "updates", "last_updated", "last_error"}}
	for _, s := range v {
		lastUpdated := ""
		if !s.LastUpdated.IsZero() {
			lastUpdated = s.LastUpdated.UTC().Format(time.RFC3339)
		}
		lastError := ""
		if s.LastError != nil {
			lastError = *s.LastError
		}
		t.Rows = append(t.Rows, []string{
			s.Name,
			s.Driver,
			strconv.FormatBool(s.Enabled),
			strconv.FormatBool(s.Initialized),
			strconv.Itoa(s.NumberOfUpdates),
			lastUpdated,
			lastError,
		})
	}
	return t
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	statuses, err := console.NewService(s.backend.client, s.logger).DatasourceStatuses(ctx)
	if err != nil {
		return cli.NewCommandError("status", err)
	}
	return render(cmd, statusView(statuses))
}
