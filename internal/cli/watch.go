package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/config"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/pipeline"
	"github.com/hupe1980/assetpipe/internal/watch"
)

type watchOptions struct {
	recursive    bool
	extensions   []string
	settingsFile string
	assetPath    string
	output       string
	debounce     time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <input>...",
		Short: "Re-run the pipeline when asset inputs change",
		Long: `Watch the input files and directories and re-run the full configuration
set whenever they change. Rapid event bursts are debounced into a
single run. An initial run happens immediately on startup.

Press Ctrl+C to stop watching.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into directory inputs")
	f.StringSliceVar(&opts.extensions, "ext", []string{".yaml", ".yml"}, "extensions collected from directory inputs")
	f.StringVarP(&opts.settingsFile, "settings", "s", "", "configuration set file (default: built-in Preview set)")
	f.StringVar(&opts.assetPath, "asset-path", "", "base path for relative asset references")
	f.StringVarP(&opts.output, "output", "o", "", "destination for write filters without an explicit path option")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before re-running")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *watchOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := config.FromContext(ctx)

	watchOpts := watch.DefaultOptions()
	watchOpts.Inputs = args
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	for _, ext := range opts.extensions {
		watchOpts.Extensions = append(watchOpts.Extensions, strings.ToLower(ext))
	}

	runFn := func(runCtx context.Context) (*watch.RunResult, error) {
		sink := pipeline.NewSlogSink(logger)

		// Inputs reload on every trigger so newly added files join the run.
		res, err := loadInputs(runCtx, args, opts.recursive, opts.extensions, sink)
		if err != nil {
			return nil, err
		}

		assetPath := opts.assetPath
		if assetPath == "" && len(res.PathCandidates) > 0 {
			assetPath = res.PathCandidates[0]
		}

		set, err := buildSet(opts.settingsFile, filter.Default(), res, logger)
		if err != nil {
			return nil, err
		}

		engine := pipeline.NewEngine(cfg.SelectedProduct(), sink)

		fctx := &filter.Context{
			AssetPath:  assetPath,
			OutputPath: opts.output,
			Product:    cfg.SelectedProduct(),
			Sink:       sink,
		}

		reports := engine.RunAll(runCtx, set, fctx)

		result := &watch.RunResult{Configurations: len(reports)}

		for _, report := range reports {
			result.Warnings += report.Warnings

			if report.Status == pipeline.StatusSucceeded {
				result.Succeeded++
			} else {
				result.Failed++
			}
		}

		return result, nil
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: exitGeneral, Err: err}
	}

	return nil
}
