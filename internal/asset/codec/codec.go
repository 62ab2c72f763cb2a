// Package codec serializes asset graphs to and from their on-disk YAML form.
// An asset file holds one or more YAML documents, each contributing objects
// to the same graph. Objects not claimed as a child by another object are
// parented under the graph's root container.
package codec

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/yamlutil"
)

// FormatVersion is the format version written into serialized assets.
const FormatVersion = "1.0"

// supportedFormats constrains which file format versions this codec reads.
var supportedFormats = mustConstraint("^1")

// document is the on-disk form of (part of) an asset graph.
type document struct {
	Format  string   `json:"format,omitempty"`
	Objects []object `json:"objects"`
}

// object is the on-disk form of a single graph object.
type object struct {
	UID        string                 `json:"uid"`
	Name       string                 `json:"name,omitempty"`
	Kind       string                 `json:"kind"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Refs       []string               `json:"refs,omitempty"`
	Children   []string               `json:"children,omitempty"`
}

// Marshal serializes a graph to canonical YAML. Key order within each
// object is deterministic; object order follows graph insertion order.
func Marshal(g *asset.Graph) ([]byte, error) {
	doc := document{Format: FormatVersion}

	for _, o := range g.Objects() {
		doc.Objects = append(doc.Objects, object{
			UID:        o.UID,
			Name:       o.Name,
			Kind:       string(o.Kind),
			Properties: o.Properties,
			Refs:       o.Refs,
			Children:   o.Children,
		})
	}

	data, err := sigsyaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing asset: %w", err)
	}

	return data, nil
}

// Unmarshal parses serialized asset data into a graph. Multi-document input
// is supported; all documents contribute objects to one graph.
func Unmarshal(data []byte) (*asset.Graph, error) {
	docs := yamlutil.SplitDocuments(data)
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty asset document")
	}

	var objects []object

	for i, raw := range docs {
		var doc document
		if err := sigsyaml.UnmarshalStrict(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing asset document %d: %w", i+1, err)
		}

		if doc.Format != "" {
			if err := checkFormat(doc.Format); err != nil {
				return nil, err
			}
		}

		objects = append(objects, doc.Objects...)
	}

	return buildGraph(objects)
}

// buildGraph assembles a graph from decoded objects. Objects that are not a
// child of any other object become top-level children of the root.
func buildGraph(objects []object) (*asset.Graph, error) {
	g := asset.New()

	claimed := make(map[string]bool)

	for _, o := range objects {
		for _, child := range o.Children {
			claimed[child] = true
		}
	}

	for _, o := range objects {
		obj := &asset.Object{
			UID:        o.UID,
			Name:       o.Name,
			Kind:       asset.Kind(o.Kind),
			Properties: o.Properties,
			Refs:       o.Refs,
		}

		if obj.Properties == nil {
			obj.Properties = make(map[string]interface{})
		}

		if claimed[o.UID] {
			// Parent link is restored below once all objects exist.
			if err := addDetached(g, obj); err != nil {
				return nil, err
			}

			continue
		}

		if err := g.Add(obj, ""); err != nil {
			return nil, fmt.Errorf("adding object %q: %w", o.Name, err)
		}
	}

	// Restore child links now that every object is present.
	for _, o := range objects {
		if len(o.Children) == 0 {
			continue
		}

		parent, ok := g.Get(o.UID)
		if !ok {
			continue
		}

		parent.Children = append([]string(nil), o.Children...)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}

	return g, nil
}

// addDetached inserts an object without a root parent link; its real parent
// claims it via a children list.
func addDetached(g *asset.Graph, obj *asset.Object) error {
	if err := g.Add(obj, ""); err != nil {
		return fmt.Errorf("adding object %q: %w", obj.Name, err)
	}

	root := g.Root()
	root.Children = root.Children[:len(root.Children)-1]

	return nil
}

// checkFormat verifies a declared format version against the supported range.
func checkFormat(v string) error {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid asset format version %q: %w", v, err)
	}

	if !supportedFormats.Check(parsed) {
		return fmt.Errorf("unsupported asset format version %q (supported: ^1)", v)
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
