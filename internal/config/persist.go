package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assetpipe/internal/product"
)

// DefaultPersistPath returns the config file path used when persisting a
// setting and no config file has been resolved yet.
func DefaultPersistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, ".config", "assetpipe", ".assetpipe.yaml"), nil
}

// WriteProduct persists the product selection into the config file at path,
// preserving every other key the file already holds. The write is atomic: a
// temp file is renamed into place under a sibling file lock.
func WriteProduct(path string, p product.Product) error {
	if path == "" {
		return errors.New("config file path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}

	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	doc := make(map[string]interface{})

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if p == product.None {
		delete(doc, "product")
	} else {
		doc["product"] = string(p)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".assetpipe-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("writing config: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
