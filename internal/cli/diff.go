package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/config"
	"github.com/hupe1980/assetpipe/internal/diff"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/pipeline"
)

type diffOptions struct {
	recursive     bool
	extensions    []string
	settingsFile  string
	configuration string
	assetPath     string
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <input>...",
		Short: "Preview what a configuration changes",
		Long: `Run one configuration over the merged inputs and show a unified diff
between the merged graph and the filtered result, both in their
canonical serialized form. Nothing is written.

Without --configuration the set's active configuration runs. Write
filters still execute; use configurations without write filters to
keep diff side-effect free.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into directory inputs")
	f.StringSliceVar(&opts.extensions, "ext", []string{".yaml", ".yml"}, "extensions collected from directory inputs")
	f.StringVarP(&opts.settingsFile, "settings", "s", "", "configuration set file (default: built-in Preview set)")
	f.StringVarP(&opts.configuration, "configuration", "c", "", "configuration to run (default: the active one)")
	f.StringVar(&opts.assetPath, "asset-path", "", "base path for relative asset references")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string, opts *diffOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := config.FromContext(ctx)

	sink := pipeline.NewSlogSink(logger)

	res, err := loadInputs(ctx, args, opts.recursive, opts.extensions, sink)
	if err != nil {
		return err
	}

	assetPath := opts.assetPath
	if assetPath == "" && len(res.PathCandidates) > 0 {
		assetPath = res.PathCandidates[0]
	}

	reg := filter.Default()

	set, err := buildSet(opts.settingsFile, reg, res, logger)
	if err != nil {
		return err
	}

	name := opts.configuration
	if name == "" {
		name = set.ActiveName()
	}

	engine := pipeline.NewEngine(cfg.SelectedProduct(), sink)

	fctx := &filter.Context{
		AssetPath: assetPath,
		Product:   cfg.SelectedProduct(),
		Sink:      sink,
	}

	report, err := engine.RunNamed(ctx, set, name, fctx)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	if report.Status != pipeline.StatusSucceeded {
		return &ExitError{
			Code: exitFailed,
			Err:  fmt.Errorf("configuration %q %s: %v", name, report.Status, report.Err),
		}
	}

	diffOpts := diff.DefaultOptions()
	diffOpts.OldLabel = "merged input"
	diffOpts.NewLabel = fmt.Sprintf("after %q", name)

	result, err := diff.Graphs(res.Graph, report.Graph, diffOpts)
	if err != nil {
		return &ExitError{Code: exitGeneral, Err: err}
	}

	diff.Write(cmd.OutOrStdout(), result, !cfg.NoColor)

	return nil
}
