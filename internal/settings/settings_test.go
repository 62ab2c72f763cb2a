package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/pipeline"
)

func buildTestSet(t *testing.T) *pipeline.Set {
	t.Helper()

	reg := filter.Default()

	preview := pipeline.NewConfiguration("Preview", nil)
	inst, err := reg.New(filter.IDPreviewScene)
	require.NoError(t, err)
	preview.AddFilter(-1, inst)

	physics := pipeline.NewConfiguration("Physics", nil)

	bodies, err := reg.New(filter.IDCreateRigidBodies)
	require.NoError(t, err)
	require.NoError(t, bodies.SetOption("mass", 2.5))
	physics.AddFilter(-1, bodies)

	resample, err := reg.New(filter.IDResampleMotions)
	require.NoError(t, err)
	require.NoError(t, resample.SetOption("rate", 60))
	physics.AddFilter(0, resample)

	set, err := pipeline.NewSet(preview)
	require.NoError(t, err)
	require.NoError(t, set.Add(physics))
	require.NoError(t, set.SetActive("Preview"))

	return set
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	set := buildTestSet(t)

	data, err := Save(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: \"1.0\"")

	got, err := Load(data, filter.Default(), nil)
	require.NoError(t, err)

	assert.Equal(t, set.Names(), got.Names())
	assert.Equal(t, "Preview", got.ActiveName())

	physics, ok := got.Get("Physics")
	require.True(t, ok)
	require.Equal(t, 2, physics.Len())

	// Filter order and bound options survive.
	first, err := physics.FilterAt(0)
	require.NoError(t, err)
	assert.Equal(t, filter.IDCreateRigidBodies, first.ID())
	assert.Equal(t, 2.5, first.Options.Float("mass", 0))

	second, err := physics.FilterAt(1)
	require.NoError(t, err)
	assert.Equal(t, filter.IDResampleMotions, second.ID())
	assert.Equal(t, 60, second.Options.Int("rate", 0))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "{broken"},
		{"unsupported version", "version: \"2.0\"\nconfigurations:\n  - name: A\n"},
		{"invalid version", "version: nope\nconfigurations:\n  - name: A\n"},
		{"no configurations", "version: \"1.0\"\nconfigurations: []\n"},
		{"unknown filter", "configurations:\n  - name: A\n    filters:\n      - id: no-such-filter\n"},
		{"unknown option", "configurations:\n  - name: A\n    filters:\n      - id: preview-scene\n        options:\n          bogus: 1\n"},
		{"unknown active", "active: Missing\nconfigurations:\n  - name: A\n"},
		{"duplicate names", "configurations:\n  - name: A\n  - name: A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data), filter.Default(), nil)

			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestLoad_MissingActiveDefaultsToFirst(t *testing.T) {
	data := "configurations:\n  - name: First\n  - name: Second\n"

	set, err := Load([]byte(data), filter.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, "First", set.ActiveName())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), filter.Default(), nil)

	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestSaveFile_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.yaml")

	require.NoError(t, SaveFile(path, buildTestSet(t)))

	got, err := LoadFile(path, filter.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Preview", "Physics"}, got.Names())

	// No temp or lock files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.yaml", entries[0].Name())
}

func TestDefaults(t *testing.T) {
	set, err := Defaults(filter.Default(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultConfigurationName}, set.Names())
	assert.Equal(t, DefaultConfigurationName, set.ActiveName())

	cfg := set.Active()
	require.Equal(t, 1, cfg.Len())

	inst, err := cfg.FilterAt(0)
	require.NoError(t, err)
	assert.Equal(t, filter.IDPreviewScene, inst.ID())
}
