package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/merge"
)

type validateOptions struct {
	recursive  bool
	extensions []string
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <input>...",
		Short: "Validate asset files without running any filters",
		Long: `Deserialize each input and verify its structural integrity: format
version, object identity, and internal link consistency. No graph is
merged and no filter runs.

Exits with code 3 when any input fails to validate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())

			paths, err := merge.CollectInputs(args, opts.recursive, opts.extensions)
			if err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			if len(paths) == 0 {
				return &ExitError{Code: exitUsage, Err: fmt.Errorf("no asset files found in the given inputs")}
			}

			rows := make([][]string, 0, len(paths))
			failed := 0

			for _, path := range paths {
				g, loadErr := merge.Load(path)
				if loadErr != nil {
					failed++

					rows = append(rows, []string{path, "INVALID", loadErr.Error()})
					logger.Error("validation failed", slog.String("path", path), slog.String("error", loadErr.Error()))

					continue
				}

				rows = append(rows, []string{path, "OK", fmt.Sprintf("%d objects", g.Len())})
			}

			out := renderTable(
				[]string{"INPUT", "RESULT", "DETAIL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)

			if failed > 0 {
				return &ExitError{Code: exitFailed, Err: fmt.Errorf("%d of %d inputs failed validation", failed, len(paths))}
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into directory inputs")
	f.StringSliceVar(&opts.extensions, "ext", []string{".yaml", ".yml"}, "extensions collected from directory inputs")

	return cmd
}
