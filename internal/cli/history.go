package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/config"
	"github.com/hupe1980/assetpipe/internal/history"
)

type historyOptions struct {
	limit int
	clear bool
}

func newHistoryCommand() *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Long: `List the most recent recorded runs, newest first. Each configuration of
a run is one row. Use --clear to drop all recorded runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.limit, "limit", "n", 20, "maximum number of entries to show")
	f.BoolVar(&opts.clear, "clear", false, "remove all recorded runs")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	if cfg.HistoryFile == "" {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("history is disabled: no history file configured")}
	}

	store, err := history.Open(cfg.HistoryFile)
	if err != nil {
		return &ExitError{Code: exitGeneral, Err: err}
	}

	defer func() {
		_ = store.Close()
	}()

	if opts.clear {
		removed, clearErr := store.Clear(ctx)
		if clearErr != nil {
			return &ExitError{Code: exitGeneral, Err: clearErr}
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)

		return nil
	}

	entries, err := store.Recent(ctx, opts.limit)
	if err != nil {
		return &ExitError{Code: exitGeneral, Err: err}
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	rows := make([][]string, 0, len(entries))

	for _, entry := range entries {
		rows = append(rows, []string{
			entry.RunAt.Local().Format(time.DateTime),
			entry.Configuration,
			string(entry.Status),
			fmt.Sprintf("%d", entry.Warnings),
			fmt.Sprintf("%d", entry.Errors),
			entry.Duration.Round(time.Millisecond).String(),
			summarizeInputs(entry.Inputs),
		})
	}

	out := renderTable(
		[]string{"RUN AT", "CONFIGURATION", "STATUS", "WARN", "ERR", "DURATION", "INPUTS"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}

// summarizeInputs keeps the inputs column readable for large batches.
func summarizeInputs(inputs []string) string {
	const maxShown = 2

	if len(inputs) <= maxShown {
		return strings.Join(inputs, ", ")
	}

	return fmt.Sprintf("%s, … (%d total)", strings.Join(inputs[:maxShown], ", "), len(inputs))
}
