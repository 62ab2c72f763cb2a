package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetpipe/internal/filter"
)

func newFiltersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available filters",
		Long: `List every registered filter with its category, capability, supported
products, and option schema. Filter identifiers are the binding keys
used in settings files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := filter.Default()

			rows := make([][]string, 0)

			for _, desc := range reg.Descriptors() {
				rows = append(rows, []string{
					desc.ID,
					string(desc.Category),
					string(desc.Capability),
					formatProducts(desc),
					formatOptions(desc),
				})
			}

			out := renderTable(
				[]string{"ID", "CATEGORY", "CAPABILITY", "PRODUCTS", "OPTIONS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)

			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	return cmd
}

// formatProducts renders the supported product list; an empty declared set
// means the filter's output loads everywhere.
func formatProducts(desc filter.Descriptor) string {
	if len(desc.Products) == 0 {
		return "all"
	}

	names := make([]string, 0, len(desc.Products))
	for _, p := range desc.Products {
		names = append(names, p.String())
	}

	return strings.Join(names, ", ")
}

// formatOptions renders the option schema as name:type pairs.
func formatOptions(desc filter.Descriptor) string {
	if len(desc.Options) == 0 {
		return ""
	}

	parts := make([]string, 0, len(desc.Options))
	for _, spec := range desc.Options {
		parts = append(parts, fmt.Sprintf("%s:%s", spec.Name, spec.Type))
	}

	return strings.Join(parts, ", ")
}
