package main

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"congress-hq/dashboard/pkg/cli"
	"congress-hq/dashboard/pkg/console"
	"congress-hq/dashboard/pkg/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules <policy>",
	Short: "List the rules of a policy",
	Args:  cobra.ExactArgs(1),
	RunE:  runRules,
}

var formatRuleCmd = &cobra.Command{
	Use:   "format-rule [rule]",
	Short: "Lay out a rule one literal per line",
	Long: `Print a rule with its head on the first line and each body literal
indented on its own line. The rule is read from stdin when no argument is
given.

Example:
  dashboard format-rule 'error(x) :- nova:servers(x), not ok(x)'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormatRule,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(formatRuleCmd)
}

type rulesView []console.PolicyRule

func (v rulesView) Table() cli.Table {
	t := cli.Table{Headers: []string{"id", "name", "rule"}}
	for _, r := range v {
		t.Rows = append(t.Rows, []string{r.ID, r.Name, r.Text})
	}
	return t
}

func runRules(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.commandContext(cmd.Context())
	defer cancel()

	listed, err := console.NewService(s.backend.client, s.logger).PolicyRules(ctx, args[0])
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	return render(cmd, rulesView(listed))
}

func runFormatRule(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return cli.NewCommandError("format-rule", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return cli.NewCommandError("format-rule", errors.New("empty rule"))
	}

	_, err := io.WriteString(cmd.OutOrStdout(), rules.Format(text)+"\n")
	return err
}
