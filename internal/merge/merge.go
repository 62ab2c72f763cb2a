// Package merge loads serialized asset files and combines them into a
// single working graph anchored under one synthetic root container. A
// failed load never aborts the whole operation; it is reported and the
// file is excluded. Only an empty result set is fatal.
package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/asset/codec"
	"github.com/hupe1980/assetpipe/internal/filter"
)

// ErrNoInput is returned when a merge is left with zero successfully
// loaded graphs.
var ErrNoInput = errors.New("no input: no asset could be loaded")

// LoadError records a single input file that failed to deserialize.
type LoadError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// Result is the outcome of loading and merging a set of asset files.
type Result struct {
	// Graph is the merged working graph.
	Graph *asset.Graph

	// Sources are the paths that loaded successfully, in input order.
	Sources []string

	// PathCandidates are the distinct base directories of the loaded
	// files, in order of first appearance. The caller picks one (or an
	// override, or none) as the run's asset path.
	PathCandidates []string

	// Failed records inputs that could not be loaded.
	Failed []*LoadError
}

// Load reads and deserializes a single asset file.
func Load(path string) (*asset.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	g, err := codec.Unmarshal(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return g, nil
}

// Files loads every path and merges the successfully loaded graphs. Load
// failures are emitted through the sink and excluded; if nothing loads,
// Files fails with ErrNoInput.
func Files(ctx context.Context, paths []string, sink filter.Sink) (*Result, error) {
	if sink == nil {
		sink = filter.NopSink{}
	}

	res := &Result{}

	var graphs []*asset.Graph

	seenDirs := make(map[string]bool)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g, err := Load(path)
		if err != nil {
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				loadErr = &LoadError{Path: path, Err: err}
			}

			sink.Emit(filter.SeverityError, "", loadErr.Error())
			res.Failed = append(res.Failed, loadErr)

			continue
		}

		graphs = append(graphs, g)
		res.Sources = append(res.Sources, path)

		if dir := filepath.Dir(path); !seenDirs[dir] {
			seenDirs[dir] = true
			res.PathCandidates = append(res.PathCandidates, dir)
		}
	}

	merged, err := Merge(graphs)
	if err != nil {
		return nil, err
	}

	res.Graph = merged

	return res, nil
}

// Merge re-parents the top-level objects of every graph under one fresh
// root container. UID collisions between objects from different sources are
// kept as distinct objects by remapping the later UID; no deduplication is
// attempted. Zero graphs is an error.
func Merge(graphs []*asset.Graph) (*asset.Graph, error) {
	if len(graphs) == 0 {
		return nil, ErrNoInput
	}

	out := asset.New()

	for _, g := range graphs {
		src := g.Clone()

		// Remap any UID already taken by an earlier source. Remapping
		// happens inside the source clone first so its internal refs and
		// parent links follow the new identity.
		for _, o := range src.Objects() {
			if _, taken := out.Get(o.UID); taken {
				if err := src.RemapUID(o.UID, uuid.NewString()); err != nil {
					return nil, fmt.Errorf("remapping colliding object %q: %w", o.Name, err)
				}
			}
		}

		topLevel := make(map[string]bool)
		for _, o := range src.TopLevel() {
			topLevel[o.UID] = true
		}

		for _, o := range src.Objects() {
			if topLevel[o.UID] {
				if err := out.Add(o, ""); err != nil {
					return nil, fmt.Errorf("merging object %q: %w", o.Name, err)
				}

				continue
			}

			if err := addKeepingParent(out, o); err != nil {
				return nil, fmt.Errorf("merging object %q: %w", o.Name, err)
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("merged graph invalid: %w", err)
	}

	return out, nil
}

// addKeepingParent inserts an object whose parent link lives in another
// object's children list, so no root link is added.
func addKeepingParent(g *asset.Graph, o *asset.Object) error {
	if err := g.Add(o, ""); err != nil {
		return err
	}

	root := g.Root()
	root.Children = root.Children[:len(root.Children)-1]

	return nil
}

// CollectInputs expands the given arguments into asset file paths.
// Directory arguments are expanded to the files they contain whose
// extension is in exts (optionally recursively); explicit file arguments
// are always included. Duplicates are dropped, input order is preserved.
func CollectInputs(args []string, recursive bool, exts []string) ([]string, error) {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(e, "*"))] = true
	}

	var out []string

	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading input %q: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		files, err := collectDir(arg, recursive, allowed)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			add(f)
		}
	}

	return out, nil
}

// collectDir lists the matching files in a directory, sorted for
// deterministic input order.
func collectDir(dir string, recursive bool, allowed map[string]bool) ([]string, error) {
	var out []string

	walk := func(path string, isDir bool) error {
		if isDir {
			return nil
		}

		if allowed[strings.ToLower(filepath.Ext(path))] {
			out = append(out, path)
		}

		return nil
	}

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			return walk(path, d.IsDir())
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory %q: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory %q: %w", dir, err)
		}

		for _, e := range entries {
			if err := walk(filepath.Join(dir, e.Name()), e.IsDir()); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(out)

	return out, nil
}

// CommonParent returns the deepest directory shared by all paths. Used by
// write filters to preserve input structure under an output folder.
func CommonParent(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := filepath.Dir(paths[0])

	for _, p := range paths[1:] {
		dir := filepath.Dir(p)

		for !strings.HasPrefix(dir+string(filepath.Separator), common+string(filepath.Separator)) {
			parent := filepath.Dir(common)
			if parent == common {
				return common
			}

			common = parent
		}
	}

	return common
}
