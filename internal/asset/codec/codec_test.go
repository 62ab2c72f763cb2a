package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/asset"
)

func TestRoundTrip(t *testing.T) {
	g := asset.New()

	parent := asset.NewObject(asset.KindContainer, "group")
	child := asset.NewObject(asset.KindSceneNode, "leaf")
	motion := asset.NewObject(asset.KindMotion, "walk")
	motion.Properties["sampleRate"] = 60
	motion.Refs = []string{child.UID}

	require.NoError(t, g.Add(parent, ""))
	require.NoError(t, g.Add(child, parent.UID))
	require.NoError(t, g.Add(motion, ""))

	data, err := Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: \"1.0\"")

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, g.Len(), got.Len())

	// Identity and nesting survive the round trip.
	gotParent, ok := got.Get(parent.UID)
	require.True(t, ok)
	assert.Equal(t, []string{child.UID}, gotParent.Children)

	gotMotion, ok := got.Get(motion.UID)
	require.True(t, ok)
	assert.Equal(t, []string{child.UID}, gotMotion.Refs)

	top := got.TopLevel()
	require.Len(t, top, 2)
	assert.Equal(t, parent.UID, top[0].UID)
	assert.Equal(t, motion.UID, top[1].UID)
}

func TestUnmarshal_MultiDocument(t *testing.T) {
	data := []byte(`format: "1.0"
objects:
  - uid: a
    name: first
    kind: SceneNode
---
objects:
  - uid: b
    name: second
    kind: Motion
`)

	g, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.TopLevel(), 2)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown field", "objects: []\nbogus: true\n"},
		{"unsupported format", "format: \"2.0\"\nobjects:\n  - uid: a\n    kind: SceneNode\n"},
		{"invalid format version", "format: not-semver\nobjects:\n  - uid: a\n    kind: SceneNode\n"},
		{"dangling child", "objects:\n  - uid: a\n    kind: Container\n    children: [missing]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshal_FormatVersionWithinMajorAccepted(t *testing.T) {
	data := []byte("format: \"1.4\"\nobjects:\n  - uid: a\n    kind: SceneNode\n")

	g, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestMarshal_Deterministic(t *testing.T) {
	g := asset.New()
	require.NoError(t, g.Add(asset.NewObject(asset.KindSceneNode, "a"), ""))
	require.NoError(t, g.Add(asset.NewObject(asset.KindSceneNode, "b"), ""))

	first, err := Marshal(g)
	require.NoError(t, err)

	second, err := Marshal(g)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
