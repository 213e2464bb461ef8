package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/catalog"
	"congress-hq/dashboard/pkg/cli"
)

var catalogFlags struct {
	columns bool
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List every policy and data source table",
	Long: `List the tables of every policy, then of every data source, in backend
order. A policy or data source whose tables cannot be listed is left out and
logged.

Examples:
  # Table names only
  dashboard catalog

  # With resolved column names, as JSON
  dashboard catalog --columns -o json`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

var columnsCmd = &cobra.Command{
	Use:   "columns <datasource> <table>",
	Short: "Show the resolved columns of one table",
	Long: `Build the column catalog and print the columns resolved for one table.
A policy table's columns come from the first rule that defines it; a data
source table's columns come from its driver schema.`,
	Args: cobra.ExactArgs(2),
	RunE: runColumns,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(columnsCmd)

	catalogCmd.Flags().BoolVar(&catalogFlags.columns, "columns", false, "resolve column names")
}

// catalogView renders a catalog one table per line.
type catalogView struct {
	*catalog.Catalog
	withColumns bool
}

func (v catalogView) Table() cli.Table {
	t := cli.Table{Headers: []string{"datasource", "kind", "table"}}
	if v.withColumns {
		t.Headers = append(t.Headers, "columns")
	}
	for _, e := range v.Entries {
		for _, tbl := range e.Tables {
			row := []string{e.Datasource, string(e.Kind), tbl.Name}
			if v.withColumns {
				row = append(row, strings.Join(tbl.Columns, ","))
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func runCatalog(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	agg := catalog.NewAggregator(s.backend.client, catalog.WithLogger(s.logger))
	var c *catalog.Catalog
	if catalogFlags.columns {
		c = agg.BuildWithColumns(ctx)
	} else {
		c = agg.Build(ctx)
	}
	return render(cmd, catalogView{Catalog: c, withColumns: catalogFlags.columns})
}

// columnsView is the column list of one table.
type columnsView struct {
	Datasource string   `json:"datasource"`
	TableName  string   `json:"table"`
	Columns    []string `json:"columns"`
}

func (v columnsView) Table() cli.Table {
	t := cli.Table{Headers: []string{"position", "column"}}
	for i, c := range v.Columns {
		t.Rows = append(t.Rows, []string{fmt.Sprint(i), c})
	}
	return t
}

func runColumns(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	datasource, table := args[0], args[1]
	c := catalog.NewAggregator(s.backend.client, catalog.WithLogger(s.logger)).BuildWithColumns(ctx)
	columns, ok := c.Columns(datasource, table)
	if !ok {
		return cli.NewCommandError("columns", fmt.Errorf("table %q not found in %q", table, datasource))
	}
	if columns == nil {
		columns = []string{}
	}
	return render(cmd, columnsView{Datasource: datasource, TableName: table, Columns: columns})
}
