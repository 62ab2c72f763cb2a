package assetpipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/pipeline"
	"github.com/hupe1980/assetpipe/internal/product"
)

const testAsset = `format: "1.0"
objects:
  - uid: node-1
    name: crate
    kind: SceneNode
    properties:
      collidable: true
  - uid: skel-1
    name: hero
    kind: Skeleton
    properties:
      bones: [pelvis, spine]
`

func writeTestAsset(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRun_DefaultSettings(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)

	result, err := Run(context.Background(), []string{input})
	require.NoError(t, err)

	assert.False(t, result.Failed)
	assert.Equal(t, []string{input}, result.Sources)
	assert.Empty(t, result.FailedInputs)
	assert.Equal(t, 2, result.Merged.Len())

	require.Len(t, result.Reports, 1)
	assert.Equal(t, "Preview", result.Reports[0].Configuration)
	assert.Equal(t, pipeline.StatusSucceeded, result.Reports[0].Status)
}

func TestRun_NoInputs(t *testing.T) {
	_, err := Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRun_WithSettingsData(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)

	settingsData := []byte(`version: "1.0"
active: Physics
configurations:
  - name: Physics
    filters:
      - id: create-rigid-bodies
        options:
          mass: 5.0
      - id: create-ragdoll
`)

	result, err := Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
	)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)

	report := result.Reports[0]
	assert.Equal(t, pipeline.StatusSucceeded, report.Status)

	// One rigid body for the collidable node plus two ragdoll bone bodies.
	bodies := 0
	for _, o := range report.Graph.Objects() {
		if o.Kind == "RigidBody" {
			bodies++
		}
	}

	assert.Equal(t, 3, bodies)
}

func TestRun_MalformedSettingsDataIsFatal(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)

	_, err := Run(context.Background(), []string{input},
		WithSettingsData([]byte("{broken")),
	)
	assert.Error(t, err)
}

func TestRun_MalformedSettingsFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)
	settingsFile := writeTestAsset(t, dir, "settings.yaml", "{broken")

	result, err := Run(context.Background(), []string{input},
		WithSettingsFile(settingsFile),
	)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "Preview", result.Reports[0].Configuration)
}

func TestRun_FailedConfigurationDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()

	// No skeleton in this scene, so create-ragdoll fails.
	input := writeTestAsset(t, dir, "scene.yaml", `format: "1.0"
objects:
  - uid: node-1
    name: crate
    kind: SceneNode
`)

	settingsData := []byte(`version: "1.0"
configurations:
  - name: Broken
    filters:
      - id: create-ragdoll
  - name: Healthy
    filters:
      - id: preview-scene
`)

	result, err := Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
	)
	require.NoError(t, err)

	assert.True(t, result.Failed)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, pipeline.StatusFailed, result.Reports[0].Status)
	assert.Equal(t, pipeline.StatusSucceeded, result.Reports[1].Status)
}

func TestRun_NamedConfiguration(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)

	settingsData := []byte(`version: "1.0"
configurations:
  - name: A
  - name: B
`)

	result, err := Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
		WithConfiguration("B"),
	)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "B", result.Reports[0].Configuration)

	_, err = Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
		WithConfiguration("missing"),
	)
	assert.Error(t, err)
}

func TestRun_WithProductCollectsCompatibilityWarnings(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)

	settingsData := []byte(`version: "1.0"
configurations:
  - name: Physics
    filters:
      - id: create-rigid-bodies
`)

	sink := &pipeline.CollectorSink{}

	result, err := Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
		WithProduct(product.XML),
		WithSink(sink),
	)
	require.NoError(t, err)

	// Incompatible filters warn but still run.
	assert.False(t, result.Failed)
	assert.Equal(t, 1, result.Reports[0].Warnings)
	assert.NotEmpty(t, sink.Entries)
}

func TestRun_WriteFilterHonorsOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := writeTestAsset(t, dir, "scene.yaml", testAsset)
	outPath := filepath.Join(dir, "out", "processed.yaml")

	settingsData := []byte(`version: "1.0"
configurations:
  - name: Export
    filters:
      - id: write-asset
`)

	result, err := Run(context.Background(), []string{input},
		WithSettingsData(settingsData),
		WithOutputPath(outPath),
	)
	require.NoError(t, err)
	assert.False(t, result.Failed)

	_, statErr := os.Stat(outPath)
	assert.NoError(t, statErr)
}

func TestRun_FailedInputsReported(t *testing.T) {
	dir := t.TempDir()
	good := writeTestAsset(t, dir, "good.yaml", testAsset)
	bad := writeTestAsset(t, dir, "bad.yaml", "{not yaml")

	result, err := Run(context.Background(), []string{good, bad})
	require.NoError(t, err)

	assert.Equal(t, []string{good}, result.Sources)
	assert.Equal(t, []string{bad}, result.FailedInputs)
}

func TestRun_DirectoryInput(t *testing.T) {
	dir := t.TempDir()
	writeTestAsset(t, dir, "scene.yaml", testAsset)
	writeTestAsset(t, dir, "notes.txt", "ignored")

	result, err := Run(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Len(t, result.Sources, 1)
}
