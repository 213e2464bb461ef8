package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/congress/memory"
	"congress-hq/dashboard/pkg/congress/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage SQLite backend snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Copy the configured backend into a SQLite snapshot",
	Long: `Read every policy, rule, table, row, data source, schema and status from
the configured backend and write them to a SQLite database. An existing
database is replaced. The snapshot can then be served with --snapshot.

Example:
  dashboard snapshot export data/snapshot.db --fixture fixture.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotExport,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
}

type exportView struct {
	Path        string `json:"path"`
	Policies    int    `json:"policies"`
	Datasources int    `json:"datasources"`
	Drivers     int    `json:"drivers"`
	Library     int    `json:"library"`
}

func newExportView(path string, snap memory.Snapshot) exportView {
	return exportView{
		Path:        path,
		Policies:    len(snap.Policies),
		Datasources: len(snap.DataSources),
		Drivers:     len(snap.Drivers),
		Library:     len(snap.Library),
	}
}

func (v exportView) Table() cli.Table {
	return cli.Table{
		Headers: []string{"path", "policies", "datasources", "drivers", "library"},
		Rows: [][]string{{
			v.Path,
			strconv.Itoa(v.Policies),
			strconv.Itoa(v.Datasources),
			strconv.Itoa(v.Drivers),
			strconv.Itoa(v.Library),
		}},
	}
}

func runSnapshotExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	path := args[0]
	snap, err := snapshot.Export(ctx, s.backend.client, path)
	if err != nil {
		return cli.NewCommandError("snapshot export", err)
	}
	s.logger.Info("snapshot exported", "path", path)
	return render(cmd, newExportView(path, snap))
}
