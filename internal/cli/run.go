package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/config"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/history"
	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/merge"
	"github.com/hupe1980/assetpipe/internal/pipeline"
	"github.com/hupe1980/assetpipe/internal/settings"
)

type runOptions struct {
	// Input collection.
	recursive  bool
	extensions []string

	// Settings.
	settingsFile  string
	saveSettings  string
	configuration string

	// Run context.
	assetPath   string
	output      string
	interactive bool

	// History.
	noHistory bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <input>...",
		Short: "Run filter configurations over asset inputs",
		Long: `Load serialized asset files, merge them into one working graph, and run
the configured filter pipeline over it.

Directory arguments are expanded to the asset files they contain,
filtered by --ext. Inputs that fail to load are reported and excluded;
the run aborts only when nothing loads at all.

Without --settings a default configuration set is used: a single
"Preview" configuration holding one preview filter. A malformed
settings file also falls back to the defaults, with a warning.

Each configuration runs over its own private copy of the merged graph.
A filter failure aborts that configuration only; sibling configurations
still run. The command exits with code 3 when any configuration failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()

	// Input flags.
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into directory inputs")
	f.StringSliceVar(&opts.extensions, "ext", []string{".yaml", ".yml"}, "extensions collected from directory inputs")

	// Settings flags.
	f.StringVarP(&opts.settingsFile, "settings", "s", "", "configuration set file (default: built-in Preview set)")
	f.StringVar(&opts.saveSettings, "save-settings", "", "write the effective configuration set to this path after the run")
	f.StringVarP(&opts.configuration, "configuration", "c", "", "run only the named configuration (default: all)")

	// Run context flags.
	f.StringVar(&opts.assetPath, "asset-path", "", "base path for relative asset references (default: first input directory)")
	f.StringVarP(&opts.output, "output", "o", "", "destination for write filters without an explicit path option")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "edit the configuration set before running")

	// History flag.
	f.BoolVar(&opts.noHistory, "no-history", false, "skip recording this run in the history database")

	return cmd
}

func runRun(ctx context.Context, cmd *cobra.Command, args []string, opts *runOptions) error {
	logger := logging.FromContext(ctx)
	cfg := config.FromContext(ctx)

	sink := pipeline.NewSlogSink(logger)

	// 1. Collect and load inputs.
	res, err := loadInputs(ctx, args, opts.recursive, opts.extensions, sink)
	if err != nil {
		return err
	}

	logger.Info("inputs merged",
		slog.Int("loaded", len(res.Sources)),
		slog.Int("failed", len(res.Failed)),
		slog.Int("objects", res.Graph.Len()),
	)

	// 2. Resolve the asset path.
	assetPath := opts.assetPath
	if assetPath == "" && len(res.PathCandidates) > 0 {
		assetPath = res.PathCandidates[0]

		if len(res.PathCandidates) > 1 {
			logger.Warn("multiple asset path candidates, using first",
				slog.String("assetPath", assetPath),
				slog.Int("candidates", len(res.PathCandidates)),
			)
		}
	}

	// 3. Build the configuration set.
	reg := filter.Default()

	set, err := buildSet(opts.settingsFile, reg, res, logger)
	if err != nil {
		return err
	}

	if opts.interactive {
		proceed, editErr := editSet(cmd.InOrStdin(), cmd.ErrOrStderr(), set, reg)
		if editErr != nil {
			return &ExitError{Code: exitGeneral, Err: editErr}
		}

		if !proceed {
			return nil
		}
	}

	// 4. Run.
	engine := pipeline.NewEngine(cfg.SelectedProduct(), sink)

	fctx := &filter.Context{
		AssetPath:  assetPath,
		OutputPath: opts.output,
		Product:    cfg.SelectedProduct(),
		Sink:       sink,
	}

	var reports []*pipeline.Report

	if opts.configuration != "" {
		report, runErr := engine.RunNamed(ctx, set, opts.configuration, fctx)
		if runErr != nil {
			return &ExitError{Code: exitUsage, Err: runErr}
		}

		reports = []*pipeline.Report{report}
	} else {
		reports = engine.RunAll(ctx, set, fctx)
	}

	// 5. Report.
	printRunSummary(cmd, reports)

	// 6. Record history.
	if !opts.noHistory && cfg.HistoryFile != "" {
		recordHistory(ctx, cfg.HistoryFile, res.Sources, reports, logger)
	}

	// 7. Persist settings when requested.
	if opts.saveSettings != "" {
		if err := settings.SaveFile(opts.saveSettings, set); err != nil {
			return &ExitError{Code: exitWrite, Err: fmt.Errorf("saving settings: %w", err)}
		}

		logger.Info("settings saved", slog.String("path", opts.saveSettings))
	}

	// 8. Exit code reflects configuration outcomes.
	for _, report := range reports {
		if report.Status == pipeline.StatusFailed || report.Status == pipeline.StatusCancelled {
			return &ExitError{
				Code: exitFailed,
				Err:  fmt.Errorf("configuration %q %s", report.Configuration, report.Status),
			}
		}
	}

	return nil
}

// loadInputs expands the arguments and merges every loadable input.
func loadInputs(ctx context.Context, args []string, recursive bool, exts []string, sink filter.Sink) (*merge.Result, error) {
	paths, err := merge.CollectInputs(args, recursive, exts)
	if err != nil {
		return nil, &ExitError{Code: exitUsage, Err: err}
	}

	if len(paths) == 0 {
		return nil, &ExitError{Code: exitUsage, Err: fmt.Errorf("no asset files found in the given inputs")}
	}

	res, err := merge.Files(ctx, paths, sink)
	if err != nil {
		return nil, &ExitError{Code: exitGeneral, Err: err}
	}

	return res, nil
}

// buildSet loads the configuration set from a settings file, falling back to
// the built-in defaults when no file is given or the file is malformed.
func buildSet(settingsFile string, reg *filter.Registry, res *merge.Result, logger *slog.Logger) (*pipeline.Set, error) {
	if settingsFile == "" {
		set, err := settings.Defaults(reg, res.Graph)
		if err != nil {
			return nil, &ExitError{Code: exitGeneral, Err: err}
		}

		return set, nil
	}

	set, err := settings.LoadFile(settingsFile, reg, res.Graph)
	if err == nil {
		return set, nil
	}

	logger.Warn("settings file unusable, falling back to defaults",
		slog.String("path", settingsFile),
		slog.String("error", err.Error()),
	)

	set, defErr := settings.Defaults(reg, res.Graph)
	if defErr != nil {
		return nil, &ExitError{Code: exitGeneral, Err: defErr}
	}

	return set, nil
}

// printRunSummary renders the per-configuration outcome table.
func printRunSummary(cmd *cobra.Command, reports []*pipeline.Report) {
	rows := make([][]string, 0, len(reports))

	for _, report := range reports {
		rows = append(rows, []string{
			report.Configuration,
			string(report.Status),
			fmt.Sprintf("%d", report.Warnings),
			fmt.Sprintf("%d", report.Errors),
			report.Duration.Round(time.Millisecond).String(),
		})
	}

	out := renderTable(
		[]string{"CONFIGURATION", "STATUS", "WARNINGS", "ERRORS", "DURATION"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out)
}

// recordHistory persists run outcomes. History failures never fail the run.
func recordHistory(ctx context.Context, path string, inputs []string, reports []*pipeline.Report, logger *slog.Logger) {
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history unavailable", slog.String("error", err.Error()))
		return
	}

	defer func() {
		_ = store.Close()
	}()

	if err := store.Record(ctx, inputs, reports); err != nil {
		logger.Warn("recording history failed", slog.String("error", err.Error()))
	}
}
