package docs

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter renders a DocModel to a writer.
type Formatter interface {
	Format(w io.Writer, model *DocModel) error
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	case "asciidoc", "adoc":
		return &AsciiDocFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported docs format: %s", format)
	}
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

// MarkdownFormatter renders documentation as Markdown.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, model *DocModel) error {
	title := model.Title
	if title == "" {
		title = "Filter Reference"
	}

	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "%d registered filter(s).\n\n", len(model.Filters))

	for _, fi := range model.Filters {
		fmt.Fprintf(w, "## `%s`\n\n", fi.ID)
		fmt.Fprintf(w, "**Category:** %s  \n", fi.Category)
		fmt.Fprintf(w, "**Capability:** %s  \n", fi.Capability)
		fmt.Fprintf(w, "**Products:** %s  \n", productLabel(fi.Products))
		fmt.Fprintln(w)

		if len(fi.Options) > 0 {
			fmt.Fprintln(w, "| Option | Type | Default | Description |")
			fmt.Fprintln(w, "|--------|------|---------|-------------|")

			for _, o := range fi.Options {
				def := o.Default
				if def == "" {
					def = "-"
				}

				fmt.Fprintf(w, "| `%s` | `%s` | %s | %s |\n", o.Name, o.Type, def, o.Description)
			}

			fmt.Fprintln(w)
		}
	}

	if model.IncludeExample {
		example := GenerateExampleSettings(model)
		fmt.Fprintf(w, "## Example Settings\n\n```yaml\n%s```\n", example)
	}

	return nil
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

// HTMLFormatter renders documentation as a standalone HTML page.
type HTMLFormatter struct{}

var htmlTpl = template.Must(template.New("docs").Funcs(template.FuncMap{
	"join":     strings.Join,
	"products": productLabel,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:2em;line-height:1.6}
table{border-collapse:collapse;width:100%;margin-bottom:1em}
th,td{border:1px solid #ddd;padding:8px;text-align:left}
th{background:#f5f5f5}
code{background:#f0f0f0;padding:2px 4px;border-radius:3px}
pre{background:#f5f5f5;padding:1em;border-radius:4px;overflow-x:auto}
</style>
</head>
<body>
<h1>{{.Title}}</h1>

{{range .Filters}}
<h2><code>{{.ID}}</code></h2>
<p><strong>Category:</strong> {{.Category}}<br>
<strong>Capability:</strong> {{.Capability}}<br>
<strong>Products:</strong> {{products .Products}}</p>

{{if .Options}}
<table>
<tr><th>Option</th><th>Type</th><th>Default</th><th>Description</th></tr>
{{range .Options}}<tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{if .Default}}{{.Default}}{{else}}-{{end}}</td><td>{{.Description}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}

{{if .ExampleSettings}}
<h2>Example Settings</h2>
<pre><code>{{.ExampleSettings}}</code></pre>
{{end}}

</body>
</html>
`))

// htmlModel wraps DocModel with helper fields for the HTML template.
type htmlModel struct {
	*DocModel
	ExampleSettings string
}

func (f *HTMLFormatter) Format(w io.Writer, model *DocModel) error {
	title := model.Title
	if title == "" {
		title = "Filter Reference"
	}

	m := htmlModel{DocModel: model}
	m.Title = title

	if model.IncludeExample {
		m.ExampleSettings = GenerateExampleSettings(model)
	}

	return htmlTpl.Execute(w, m)
}

// ---------------------------------------------------------------------------
// AsciiDoc
// ---------------------------------------------------------------------------

// AsciiDocFormatter renders documentation as AsciiDoc.
type AsciiDocFormatter struct{}

func (f *AsciiDocFormatter) Format(w io.Writer, model *DocModel) error {
	title := model.Title
	if title == "" {
		title = "Filter Reference"
	}

	fmt.Fprintf(w, "= %s\n\n", title)

	// Overview table.
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCategory\tCapability\tProducts")

	for _, fi := range model.Filters {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", fi.ID, fi.Category, fi.Capability, productLabel(fi.Products))
	}

	tw.Flush()
	fmt.Fprintln(w)

	for _, fi := range model.Filters {
		if len(fi.Options) == 0 {
			continue
		}

		fmt.Fprintf(w, "== %s\n\n", fi.ID)
		fmt.Fprintln(w, "[cols=\"1,1,1,2\", options=\"header\"]")
		fmt.Fprintln(w, "|===")
		fmt.Fprintln(w, "| Option | Type | Default | Description")

		for _, o := range fi.Options {
			def := o.Default
			if def == "" {
				def = "-"
			}

			fmt.Fprintf(w, "\n| `%s`\n| `%s`\n| %s\n| %s\n", o.Name, o.Type, def, o.Description)
		}

		fmt.Fprintln(w, "|===")
		fmt.Fprintln(w)
	}

	if model.IncludeExample {
		example := GenerateExampleSettings(model)
		fmt.Fprintf(w, "== Example Settings\n\n[source,yaml]\n----\n%s----\n", example)
	}

	return nil
}

// productLabel renders a product list; empty means loadable everywhere.
func productLabel(products []string) string {
	if len(products) == 0 {
		return "all"
	}

	return strings.Join(products, ", ")
}
