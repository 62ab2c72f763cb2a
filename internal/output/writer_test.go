package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutWriter(t *testing.T) {
	var buf bytes.Buffer

	w := NewStdoutWriter(&buf)
	require.NoError(t, w.Write([]byte("payload")))
	assert.Equal(t, "payload", buf.String())
}

func TestFileWriter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "scene.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("data")))
	assert.Equal(t, path, w.Path())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestFileWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("first")))
	require.NoError(t, w.Write([]byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	w := NewFileWriter(path, WithPermissions(0o600))
	require.NoError(t, w.Write([]byte("data")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
