package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assetpipe/internal/product"
)

func readConfigDoc(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc := make(map[string]interface{})
	require.NoError(t, yaml.Unmarshal(data, &doc))

	return doc
}

func TestWriteProduct_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".assetpipe.yaml")

	require.NoError(t, WriteProduct(path, product.Win32))

	doc := readConfigDoc(t, path)
	assert.Equal(t, "win32", doc["product"])
}

func TestWriteProduct_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".assetpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: debug\nquiet: true\n"), 0o600))

	require.NoError(t, WriteProduct(path, product.Amd64))

	doc := readConfigDoc(t, path)
	assert.Equal(t, "amd64", doc["product"])
	assert.Equal(t, "debug", doc["log-level"])
	assert.Equal(t, true, doc["quiet"])
}

func TestWriteProduct_NoneRemovesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".assetpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("product: xml\nlog-level: warn\n"), 0o600))

	require.NoError(t, WriteProduct(path, product.None))

	doc := readConfigDoc(t, path)
	assert.NotContains(t, doc, "product")
	assert.Equal(t, "warn", doc["log-level"])
}

func TestWriteProduct_EmptyPath(t *testing.T) {
	assert.Error(t, WriteProduct("", product.XML))
}

func TestWriteProduct_MalformedExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".assetpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	assert.Error(t, WriteProduct(path, product.XML))
}

func TestWriteProduct_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".assetpipe.yaml")

	require.NoError(t, WriteProduct(path, product.XML))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".assetpipe.yaml", entries[0].Name())
}
