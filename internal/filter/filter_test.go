package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/product"
)

func TestDescriptor_IsCompatible(t *testing.T) {
	restricted := Descriptor{ID: "x", Products: []product.Product{product.Win32}}
	open := Descriptor{ID: "y"}

	tests := []struct {
		name     string
		desc     Descriptor
		selected product.Product
		want     bool
	}{
		{"no selection is always compatible", restricted, product.None, true},
		{"empty product set is always compatible", open, product.XML, true},
		{"matching product", restricted, product.Win32, true},
		{"non-matching product", restricted, product.Amd64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.IsCompatible(tt.selected))
		})
	}
}

func TestNewInstance_BindsDefaults(t *testing.T) {
	inst := NewInstance(&NormalizeNames{})

	assert.Equal(t, IDNormalizeNames, inst.ID())
	assert.Equal(t, "", inst.Options["prefix"])
	assert.Equal(t, true, inst.Options["lowercase"])
}

func TestInstance_SetOption(t *testing.T) {
	inst := NewInstance(&NormalizeNames{})

	require.NoError(t, inst.SetOption("prefix", "lod0_"))
	assert.Equal(t, "lod0_", inst.Options["prefix"])

	err := inst.SetOption("bogus", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestInstance_CloneIsIndependent(t *testing.T) {
	inst := NewInstance(&ResampleMotions{})
	require.NoError(t, inst.SetOption("rate", 60))

	cp := inst.Clone()
	require.NoError(t, cp.SetOption("rate", 15))

	assert.Equal(t, 60, inst.Options["rate"])
	assert.Equal(t, 15, cp.Options["rate"])

	// The stateless filter itself is shared.
	assert.Same(t, inst.Filter, cp.Filter)
}

func TestOptions_TypedGetters(t *testing.T) {
	opts := Options{
		"name":  "scene",
		"count": "3",
		"scale": 1.5,
		"flag":  "true",
	}

	assert.Equal(t, "scene", opts.String("name", ""))
	assert.Equal(t, 3, opts.Int("count", 0))
	assert.Equal(t, 1.5, opts.Float("scale", 0))
	assert.Equal(t, true, opts.Bool("flag", false))

	// Unset keys fall back to the given default.
	assert.Equal(t, "def", opts.String("missing", "def"))
	assert.Equal(t, 7, opts.Int("missing", 7))
}

func TestOptions_Clone(t *testing.T) {
	assert.Nil(t, Options(nil).Clone())

	opts := Options{"nested": map[string]interface{}{"k": "v"}}
	cp := opts.Clone()

	cp["nested"].(map[string]interface{})["k"] = "mutated"
	assert.Equal(t, "v", opts["nested"].(map[string]interface{})["k"])
}

func TestError_Unwrap(t *testing.T) {
	err := Errorf("some-filter", "broke: %d", 42)

	assert.Equal(t, "some-filter", err.FilterID)
	assert.Contains(t, err.Error(), "filter some-filter")
	assert.Contains(t, err.Error(), "broke: 42")
	assert.Error(t, err.Unwrap())
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
}

func TestContext_WithSinkLeavesOriginalUntouched(t *testing.T) {
	orig := &Context{Sink: NopSink{}, AssetPath: "/assets"}

	other := orig.WithSink(nil)
	assert.Nil(t, other.Sink)
	assert.Equal(t, "/assets", other.AssetPath)
	assert.NotNil(t, orig.Sink)
}
