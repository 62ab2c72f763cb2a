package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/config"
	"github.com/hupe1980/assetpipe/internal/logging"
	"github.com/hupe1980/assetpipe/internal/product"
)

func newProductCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Show or persist the selected product",
		Long: `The selected product is the run-time target used for filter
compatibility warnings. It only affects warnings: incompatible filters
still run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			_, err := fmt.Fprintln(cmd.OutOrStdout(), cfg.SelectedProduct())

			return err
		},
	}

	cmd.AddCommand(newProductSetCommand(), newProductListCommand())

	return cmd
}

func newProductSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <product>",
		Short: "Persist the product selection in the config file",
		Long: `Persist the product selection so later invocations pick it up without
a --product flag. Use "none" to clear the selection.

The selection is written into the resolved config file, or into
~/.config/assetpipe/.assetpipe.yaml when none exists yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
			cfg := config.FromContext(ctx)

			p, err := product.Parse(args[0])
			if err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			path := cfg.ConfigFile
			if path == "" {
				defaultPath, pathErr := config.DefaultPersistPath()
				if pathErr != nil {
					return &ExitError{Code: exitGeneral, Err: pathErr}
				}

				path = defaultPath
			}

			if err := config.WriteProduct(path, p); err != nil {
				return &ExitError{Code: exitWrite, Err: err}
			}

			logger.Info("product selection saved",
				slog.String("product", p.String()),
				slog.String("path", path),
			)

			return nil
		},
	}
}

func newProductListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := make([]string, 0, len(product.All()))
			for _, p := range product.All() {
				names = append(names, p.String())
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))

			return err
		},
	}
}
