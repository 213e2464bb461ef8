package main

import (
	"strings"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/congress"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <datasource> [table]",
	Short: "Show the driver schema of a data source",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

type schemaView []congress.TableSchema

func (v schemaView) Table() cli.Table {
	t := cli.Table{Headers: []string{"table", "columns"}}
	for _, s := range v {
		t.Rows = append(t.Rows, []string{s.TableID, strings.Join(s.ColumnNames(), ",")})
	}
	return t
}

func runSchema(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	if len(args) == 2 {
		ts, err := s.backend.client.GetDataSourceTableSchema(ctx, args[0], args[1])
		if err != nil {
			return cli.NewCommandError("schema", err)
		}
		return render(cmd, schemaView{*ts})
	}

	schemas, err := s.backend.client.GetDataSourceSchema(ctx, args[0])
	if err != nil {
		return cli.NewCommandError("schema", err)
	}
	return render(cmd, schemaView(schemas))
}
