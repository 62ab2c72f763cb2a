package docs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/filter"
)

func TestFromRegistry(t *testing.T) {
	model := FromRegistry(filter.Default())

	require.Len(t, model.Filters, 8)
	assert.Equal(t, filter.IDNormalizeNames, model.Filters[0].ID)

	var ragdoll *FilterInfo

	for i := range model.Filters {
		if model.Filters[i].ID == filter.IDCreateRagdoll {
			ragdoll = &model.Filters[i]
		}
	}

	require.NotNil(t, ragdoll)
	assert.Equal(t, "physics", ragdoll.Category)
	assert.Equal(t, "create", ragdoll.Capability)
	assert.Equal(t, []string{"win32", "amd64"}, ragdoll.Products)
	require.Len(t, ragdoll.Options, 1)
	assert.Equal(t, "mass", ragdoll.Options[0].Name)
	assert.Equal(t, "1", ragdoll.Options[0].Default)
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"markdown", "md", "html", "asciidoc", "adoc", "MARKDOWN"} {
		_, err := NewFormatter(name)
		assert.NoError(t, err, name)
	}

	_, err := NewFormatter("pdf")
	assert.Error(t, err)
}

func TestMarkdownFormatter(t *testing.T) {
	model := FromRegistry(filter.Default())
	model.IncludeExample = true

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Format(&buf, model))

	out := buf.String()
	assert.Contains(t, out, "# Filter Reference")
	assert.Contains(t, out, "## `normalize-names`")
	assert.Contains(t, out, "**Products:** all")
	assert.Contains(t, out, "**Products:** win32, amd64")
	assert.Contains(t, out, "| `rate` | `int` | 30 |")
	assert.Contains(t, out, "## Example Settings")
}

func TestMarkdownFormatter_TitleOverride(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Format(&buf, &DocModel{Title: "Custom"}))
	assert.True(t, strings.HasPrefix(buf.String(), "# Custom\n"))
}

func TestHTMLFormatter(t *testing.T) {
	model := FromRegistry(filter.Default())

	var buf bytes.Buffer
	require.NoError(t, (&HTMLFormatter{}).Format(&buf, model))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Filter Reference</title>")
	assert.Contains(t, out, "<code>create-ragdoll</code>")
	assert.Contains(t, out, "win32, amd64")
}

func TestAsciiDocFormatter(t *testing.T) {
	model := FromRegistry(filter.Default())

	var buf bytes.Buffer
	require.NoError(t, (&AsciiDocFormatter{}).Format(&buf, model))

	out := buf.String()
	assert.Contains(t, out, "= Filter Reference")
	assert.Contains(t, out, "|===")
	assert.Contains(t, out, "== resample-motions")
}

func TestGenerateExampleSettings(t *testing.T) {
	model := FromRegistry(filter.Default())
	example := GenerateExampleSettings(model)

	assert.Contains(t, example, "version: \"1.0\"")
	assert.Contains(t, example, "active: Example")
	assert.Contains(t, example, "- id: normalize-names")
	assert.Contains(t, example, "rate: 30")
	assert.Contains(t, example, "keep: 1")

	// Options without a rendered default are left out of the example.
	assert.NotContains(t, example, "prefix:")
}
