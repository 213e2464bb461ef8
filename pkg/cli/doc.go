/*
Package cli provides the output formatters, error types and signal handling
used by the dashboard command.

Output Formatting:

Command results are rendered as aligned text, JSON or CSV. Text and CSV
need the result to implement Tabular; JSON encodes the value itself:

	formatter, err := cli.NewFormatter(cli.FormatCSV)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, result)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
