// Package docs generates human-readable reference documentation for the
// registered filters. It supports Markdown, HTML, and AsciiDoc output
// formats, with optional example settings generation.
package docs

import (
	"fmt"
	"strings"

	"github.com/hupe1980/assetpipe/internal/filter"
)

// OptionInfo describes a single filter option.
type OptionInfo struct {
	// Name is the option name (e.g., "rate").
	Name string
	// Type is the option value type (string, int, float, bool).
	Type string
	// Default is the rendered default value, if any.
	Default string
	// Description explains what the option does.
	Description string
}

// FilterInfo describes one registered filter.
type FilterInfo struct {
	// ID is the filter identifier used in settings files.
	ID string
	// Category groups the filter for presentation.
	Category string
	// Capability describes the filter's effect on the graph.
	Capability string
	// Products lists the run-time targets the output is loadable under.
	// Empty means loadable everywhere.
	Products []string
	// Options is the filter's option schema.
	Options []OptionInfo
}

// DocModel is the structured data model for documentation generation.
type DocModel struct {
	// Title overrides the document title.
	Title string
	// Filters are the registered filters, in registration order.
	Filters []FilterInfo
	// IncludeExample controls whether an example settings section is
	// appended.
	IncludeExample bool
}

// FromRegistry builds a DocModel from the filter registry.
func FromRegistry(reg *filter.Registry) *DocModel {
	model := &DocModel{}

	for _, desc := range reg.Descriptors() {
		fi := FilterInfo{
			ID:         desc.ID,
			Category:   string(desc.Category),
			Capability: string(desc.Capability),
		}

		for _, p := range desc.Products {
			fi.Products = append(fi.Products, p.String())
		}

		for _, spec := range desc.Options {
			oi := OptionInfo{
				Name:        spec.Name,
				Type:        string(spec.Type),
				Description: spec.Description,
			}

			if spec.Default != nil {
				oi.Default = fmt.Sprintf("%v", spec.Default)
			}

			fi.Options = append(fi.Options, oi)
		}

		model.Filters = append(model.Filters, fi)
	}

	return model
}

// GenerateExampleSettings creates an example settings file using every
// documented filter with its default options.
func GenerateExampleSettings(model *DocModel) string {
	var b strings.Builder

	b.WriteString("version: \"1.0\"\nactive: Example\nconfigurations:\n")
	b.WriteString("  - name: Example\n    filters:\n")

	for _, f := range model.Filters {
		b.WriteString("      - id: ")
		b.WriteString(f.ID)
		b.WriteString("\n")

		withDefaults := make([]OptionInfo, 0, len(f.Options))

		for _, o := range f.Options {
			if o.Default != "" {
				withDefaults = append(withDefaults, o)
			}
		}

		if len(withDefaults) == 0 {
			continue
		}

		b.WriteString("        options:\n")

		for _, o := range withDefaults {
			b.WriteString("          ")
			b.WriteString(o.Name)
			b.WriteString(": ")
			b.WriteString(exampleValue(o))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func exampleValue(o OptionInfo) string {
	if o.Type == "string" {
		return fmt.Sprintf("%q", o.Default)
	}

	return o.Default
}
