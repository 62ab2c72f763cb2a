// Package settings persists configuration sets to their exchange file
// format. The saved form is a recipe only — filter identifiers and bound
// option values — so a settings file loads independently of any asset.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/pipeline"
)

// FormatVersion is written into saved settings files.
const FormatVersion = "1.0"

// DefaultConfigurationName names the single configuration of the defaults
// fallback set.
const DefaultConfigurationName = "Preview"

// supportedFormats constrains which settings file versions load.
var supportedFormats = mustConstraint("^1")

// LoadError marks a malformed or unreadable settings file. Callers fall
// back to Defaults when they see it.
type LoadError struct {
	Err error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading configuration set: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// fileForm is the on-disk shape of a configuration set.
type fileForm struct {
	Version        string       `yaml:"version"`
	Active         string       `yaml:"active"`
	Configurations []configForm `yaml:"configurations"`
}

type configForm struct {
	Name    string       `yaml:"name"`
	Filters []filterForm `yaml:"filters"`
}

type filterForm struct {
	ID      string                 `yaml:"id"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// Save serializes a configuration set: names, filter order, bound options,
// and the active selection. Graphs are not part of the saved form.
func Save(set *pipeline.Set) ([]byte, error) {
	form := fileForm{
		Version: FormatVersion,
		Active:  set.ActiveName(),
	}

	for _, cfg := range set.All() {
		cf := configForm{Name: cfg.Name()}

		for _, inst := range cfg.Filters() {
			cf.Filters = append(cf.Filters, filterForm{
				ID:      inst.ID(),
				Options: inst.Options.Clone(),
			})
		}

		form.Configurations = append(form.Configurations, cf)
	}

	data, err := yaml.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("serializing configuration set: %w", err)
	}

	return data, nil
}

// SaveFile writes the set to path atomically: the data lands in a temp file
// that is renamed into place under a sibling file lock, so no partial write
// is ever visible.
func SaveFile(path string, set *pipeline.Set) error {
	data, err := Save(set)
	if err != nil {
		return err
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

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("writing settings: %w", err)
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

// Load deserializes a configuration set, binding filter identifiers through
// the registry. Every configuration receives its own copy of graph (nil
// means an empty graph). Malformed documents, unsupported versions, and
// unknown filter identifiers all yield a *LoadError.
func Load(data []byte, reg *filter.Registry, graph *asset.Graph) (*pipeline.Set, error) {
	var form fileForm
	if err := yaml.Unmarshal(data, &form); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parsing settings: %w", err)}
	}

	if form.Version != "" {
		if err := checkVersion(form.Version); err != nil {
			return nil, &LoadError{Err: err}
		}
	}

	if len(form.Configurations) == 0 {
		return nil, &LoadError{Err: fmt.Errorf("settings contain no configurations")}
	}

	var set *pipeline.Set

	for _, cf := range form.Configurations {
		cfg := pipeline.NewConfiguration(cf.Name, graph)

		for _, ff := range cf.Filters {
			inst, err := reg.New(ff.ID)
			if err != nil {
				return nil, &LoadError{Err: fmt.Errorf("configuration %q: %w", cf.Name, err)}
			}

			for name, value := range ff.Options {
				if err := inst.SetOption(name, value); err != nil {
					return nil, &LoadError{Err: fmt.Errorf("configuration %q: %w", cf.Name, err)}
				}
			}

			cfg.AddFilter(cfg.Len()-1, inst)
		}

		if set == nil {
			s, err := pipeline.NewSet(cfg)
			if err != nil {
				return nil, &LoadError{Err: err}
			}

			set = s

			continue
		}

		if err := set.Add(cfg); err != nil {
			return nil, &LoadError{Err: err}
		}
	}

	active := form.Active
	if active == "" {
		active = set.Names()[0]
	}

	if err := set.SetActive(active); err != nil {
		return nil, &LoadError{Err: err}
	}

	return set, nil
}

// LoadFile reads and deserializes a settings file.
func LoadFile(path string, reg *filter.Registry, graph *asset.Graph) (*pipeline.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	return Load(data, reg, graph)
}

// Defaults returns the fallback configuration set used when no saved
// settings apply: a single configuration holding one preview filter.
func Defaults(reg *filter.Registry, graph *asset.Graph) (*pipeline.Set, error) {
	cfg := pipeline.NewConfiguration(DefaultConfigurationName, graph)

	inst, err := reg.New(filter.IDPreviewScene)
	if err != nil {
		return nil, fmt.Errorf("building default configuration: %w", err)
	}

	cfg.AddFilter(0, inst)

	return pipeline.NewSet(cfg)
}

// checkVersion verifies a settings format version against the supported
// range.
func checkVersion(v string) error {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid settings version %q: %w", v, err)
	}

	if !supportedFormats.Check(parsed) {
		return fmt.Errorf("unsupported settings version %q (supported: ^1)", v)
	}

	return nil
}

func mustConstraint(c string) *semver.Constraints {
	parsed, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}

	return parsed
}
