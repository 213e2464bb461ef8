package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/violations"
)

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Summarize error and warning rows per policy",
	Long: `Count the rows of every policy's error and warning tables. Policies
without violations are left out. Policies or tables that could not be read
are listed on stderr.`,
	Args: cobra.NoArgs,
	RunE: runViolations,
}

func init() {
	rootCmd.AddCommand(violationsCmd)
}

type violationsView struct {
	violations.Report
}

func (v violationsView) Table() cli.Table {
	t := cli.Table{Headers: []string{"policy", "id", "owner", "errors", "warnings"}}
	for _, s := range v.Summaries {
		t.Rows = append(t.Rows, []string{
			s.Name,
			s.PolicyID,
			s.OwnerID,
			strconv.Itoa(s.Errors()),
			strconv.Itoa(s.Warnings()),
		})
	}
	return t
}

func runViolations(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	report := violations.NewAggregator(s.backend.client, nil, s.logger).Scan(ctx)
	for _, skip := range report.Skipped {
		target := skip.Policy
		if skip.Table != "" {
			target += "/" + skip.Table
		}
		cmd.PrintErrf("skipped %s (%s): %s\n", target, skip.Op, skip.Error)
	}
	return render(cmd, violationsView{Report: report})
}
