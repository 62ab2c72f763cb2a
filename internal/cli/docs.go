package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/docs"
	"github.com/hupe1980/assetpipe/internal/filter"
)

type docsOptions struct {
	format  string
	output  string
	title   string
	example bool
}

func newDocsCommand() *cobra.Command {
	opts := &docsOptions{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate filter reference documentation",
		Long: `Generate reference documentation for every registered filter: its
identifier, category, capability, supported products, and option
schema.

Output formats: markdown (default), html, asciidoc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter, err := docs.NewFormatter(opts.format)
			if err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			model := docs.FromRegistry(filter.Default())
			model.Title = opts.title
			model.IncludeExample = opts.example

			w := cmd.OutOrStdout()

			if opts.output != "" {
				f, createErr := os.Create(opts.output)
				if createErr != nil {
					return &ExitError{Code: exitWrite, Err: fmt.Errorf("creating %s: %w", opts.output, createErr)}
				}

				defer func() {
					_ = f.Close()
				}()

				w = f
			}

			if err := formatter.Format(w, model); err != nil {
				return &ExitError{Code: exitGeneral, Err: fmt.Errorf("formatting docs: %w", err)}
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "markdown", "output format: markdown, html, asciidoc")
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&opts.title, "title", "", "document title override")
	f.BoolVar(&opts.example, "example", false, "append an example settings section")

	return cmd
}
