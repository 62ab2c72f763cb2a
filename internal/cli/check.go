package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/check"
	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/pipeline"
)

type checkOptions struct {
	recursive  bool
	extensions []string
	format     string
	failOn     string
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <input>...",
		Short: "Analyze merged assets for structural problems",
		Long: `Merge the inputs and run every built-in structural check over the
resulting graph: dangling references, unreachable objects, duplicate
names, and content combinations that tend to break filters.

Use --fail-on to set a severity threshold: the command exits with
code 3 if any finding meets or exceeds the threshold.

Output formats: table (default), json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into directory inputs")
	f.StringSliceVar(&opts.extensions, "ext", []string{".yaml", ".yml"}, "extensions collected from directory inputs")
	f.StringVar(&opts.format, "format", "table", "output format: table, json")
	f.StringVar(&opts.failOn, "fail-on", "", "fail with exit code 3 if findings >= severity (error, warning, info)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	// Fail fast on a bad threshold before doing any work.
	var threshold check.Severity

	haveThreshold := opts.failOn != ""
	if haveThreshold {
		parsed, err := check.ParseSeverity(opts.failOn)
		if err != nil {
			return &ExitError{Code: exitUsage, Err: err}
		}

		threshold = parsed
	}

	sink := pipeline.NewSlogSink(logger)

	res, err := loadInputs(ctx, args, opts.recursive, opts.extensions, sink)
	if err != nil {
		return err
	}

	runner := check.New(check.DefaultChecks()...)
	result := runner.Run(ctx, res.Graph)

	switch opts.format {
	case "json":
		data, marshalErr := json.MarshalIndent(result, "", "  ")
		if marshalErr != nil {
			return &ExitError{Code: exitGeneral, Err: fmt.Errorf("formatting results: %w", marshalErr)}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "table":
		printCheckTable(cmd, result)
	default:
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("unknown format %q, valid values: table, json", opts.format)}
	}

	if haveThreshold && !result.Passed(threshold) {
		return &ExitError{
			Code: exitFailed,
			Err:  fmt.Errorf("check failed: findings at or above %s severity", threshold),
		}
	}

	return nil
}

func printCheckTable(cmd *cobra.Command, result *check.Result) {
	if len(result.Findings) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No findings.")
		return
	}

	rows := make([][]string, 0, len(result.Findings))

	for _, f := range result.Findings {
		rows = append(rows, []string{
			f.RuleID,
			f.Severity.String(),
			f.ObjectName,
			f.Message,
		})
	}

	out := renderTable(
		[]string{"RULE", "SEVERITY", "OBJECT", "MESSAGE"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	)

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d finding(s): %d error, %d warning, %d info\n",
		len(result.Findings),
		result.Summary[check.SeverityError.String()],
		result.Summary[check.SeverityWarning.String()],
		result.Summary[check.SeverityInfo.String()],
	)
}
