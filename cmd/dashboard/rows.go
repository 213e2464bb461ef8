package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/console"
	"congress-hq/dashboard/pkg/schema"
)

var rowsCmd = &cobra.Command{
	Use:   "rows <policy|service> <datasource> <table>",
	Short: "Show the rows of one table",
	Long: `Show the rows of a policy table or a data source table, shaped by the
table's resolved columns. When the columns cannot be resolved, or their
number does not match the row width, columns are numbered from 0.

A policy table named "service:table" whose prefix is a data source takes its
columns from that data source's driver schema.

Examples:
  dashboard rows policy classification error
  dashboard rows service nova servers -o csv`,
	Args: cobra.ExactArgs(3),
	RunE: runRows,
}

func init() {
	rootCmd.AddCommand(rowsCmd)
}

type rowsView struct {
	*console.TableView
}

func (v rowsView) Table() cli.Table {
	columns := v.Layout.Columns()
	t := cli.Table{Headers: append([]string{"id"}, columns...)}
	for _, rec := range v.Records {
		row := make([]string, 0, len(columns)+1)
		row = append(row, rec.ID)
		for _, c := range columns {
			value, _ := rec.Get(c)
			row = append(row, value)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func parseKind(s string) (schema.Origin, error) {
	switch schema.Origin(s) {
	case schema.OriginPolicy, schema.OriginService:
		return schema.Origin(s), nil
	default:
		return "", cli.NewConfigError("kind", fmt.Sprintf("%q is not policy or service", s))
	}
}

func runRows(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	view, err := console.NewService(s.backend.client, s.logger).TableView(ctx, kind, args[1], args[2])
	if err != nil {
		return cli.NewCommandError("rows", err)
	}
	return render(cmd, rowsView{TableView: view})
}
