package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/product"
)

// Built-in filter identifiers.
const (
	IDNormalizeNames      = "normalize-names"
	IDRemoveKind          = "remove-kind"
	IDCreateRigidBodies   = "create-rigid-bodies"
	IDCreateRagdoll       = "create-ragdoll"
	IDResampleMotions     = "resample-motions"
	IDStripMaterialDetail = "strip-material-detail"
	IDPreviewScene        = "preview-scene"
	IDWriteAsset          = "write-asset"
)

// physicsProducts lists the targets whose run-times load generated physics
// content.
var physicsProducts = []product.Product{product.Win32, product.Amd64}

// NormalizeNames rewrites object names into a canonical form: trimmed,
// space-free, optionally lowercased and prefixed.
type NormalizeNames struct{}

// Descriptor implements Filter.
func (f *NormalizeNames) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDNormalizeNames,
		Category:   CategoryCore,
		Capability: CapabilityModify,
		Options: []OptionSpec{
			{Name: "prefix", Type: OptionString, Default: "", Description: "prefix prepended to every object name"},
			{Name: "lowercase", Type: OptionBool, Default: true, Description: "lowercase object names"},
		},
	}
}

// Apply implements Filter.
func (f *NormalizeNames) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	prefix := opts.String("prefix", "")
	lower := opts.Bool("lowercase", true)

	for _, o := range g.Objects() {
		name := strings.TrimSpace(o.Name)
		name = strings.ReplaceAll(name, " ", "_")

		if lower {
			name = strings.ToLower(name)
		}

		o.Name = prefix + name
	}

	return g, nil
}

// RemoveKind deletes every object of an option-selected kind. References to
// removed objects are stripped so the graph stays structurally valid.
type RemoveKind struct{}

// Descriptor implements Filter.
func (f *RemoveKind) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDRemoveKind,
		Category:   CategoryCore,
		Capability: CapabilityDelete,
		Options: []OptionSpec{
			{Name: "kind", Type: OptionString, Default: "", Description: "object kind to remove (required)"},
		},
	}
}

// Apply implements Filter.
func (f *RemoveKind) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	kind := opts.String("kind", "")
	if kind == "" {
		return nil, Errorf(IDRemoveKind, "the kind option is required")
	}

	for _, o := range g.ByKind(asset.Kind(kind)) {
		if err := g.Remove(o.UID); err != nil {
			return nil, Errorf(IDRemoveKind, "removing %q: %v", o.Name, err)
		}
	}

	return g, nil
}

// CreateRigidBodies creates a RigidBody for every scene node marked
// collidable that does not already have one.
type CreateRigidBodies struct{}

// Descriptor implements Filter.
func (f *CreateRigidBodies) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDCreateRigidBodies,
		Category:   CategoryPhysics,
		Capability: CapabilityCreate,
		Products:   physicsProducts,
		Options: []OptionSpec{
			{Name: "mass", Type: OptionFloat, Default: 1.0, Description: "mass assigned to created rigid bodies"},
		},
	}
}

// Apply implements Filter.
func (f *CreateRigidBodies) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	mass := opts.Float("mass", 1.0)

	// Index scene nodes that already have a rigid body attached.
	covered := make(map[string]bool)

	for _, rb := range g.ByKind(asset.KindRigidBody) {
		for _, ref := range rb.Refs {
			covered[ref] = true
		}
	}

	for _, node := range g.ByKind(asset.KindSceneNode) {
		collidable, _ := node.Properties["collidable"].(bool)
		if !collidable || covered[node.UID] {
			continue
		}

		body := asset.NewObject(asset.KindRigidBody, node.Name+"_rb")
		body.Properties["mass"] = mass
		body.Refs = []string{node.UID}

		if err := g.Add(body, ""); err != nil {
			return nil, Errorf(IDCreateRigidBodies, "adding rigid body for %q: %v", node.Name, err)
		}
	}

	return g, nil
}

// CreateRagdoll builds a rigid-body chain with constraints from a skeleton's
// bones. It requires a skeleton object in the graph; without one it fails,
// which makes it the canonical precondition example for filter errors.
type CreateRagdoll struct{}

// Descriptor implements Filter.
func (f *CreateRagdoll) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDCreateRagdoll,
		Category:   CategoryPhysics,
		Capability: CapabilityCreate,
		Products:   physicsProducts,
		Options: []OptionSpec{
			{Name: "mass", Type: OptionFloat, Default: 1.0, Description: "mass assigned to each bone body"},
		},
	}
}

// Apply implements Filter.
func (f *CreateRagdoll) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	skeletons := g.ByKind(asset.KindSkeleton)
	if len(skeletons) == 0 {
		return nil, Errorf(IDCreateRagdoll, "requires a skeleton object in the scene")
	}

	mass := opts.Float("mass", 1.0)

	for _, sk := range skeletons {
		bones := boneNames(sk)
		if len(bones) == 0 {
			continue
		}

		container := asset.NewObject(asset.KindContainer, sk.Name+"_ragdoll")
		container.Refs = []string{sk.UID}

		if err := g.Add(container, ""); err != nil {
			return nil, Errorf(IDCreateRagdoll, "adding ragdoll container: %v", err)
		}

		var prev *asset.Object

		for _, bone := range bones {
			body := asset.NewObject(asset.KindRigidBody, sk.Name+"_"+bone+"_rb")
			body.Properties["mass"] = mass
			body.Properties["bone"] = bone
			body.Refs = []string{sk.UID}

			if err := g.Add(body, container.UID); err != nil {
				return nil, Errorf(IDCreateRagdoll, "adding bone body %q: %v", bone, err)
			}

			if prev != nil {
				joint := asset.NewObject(asset.KindConstraint, prev.Name+"__"+body.Name)
				joint.Refs = []string{prev.UID, body.UID}

				if err := g.Add(joint, container.UID); err != nil {
					return nil, Errorf(IDCreateRagdoll, "adding constraint: %v", err)
				}
			}

			prev = body
		}
	}

	return g, nil
}

// boneNames extracts the bone list from a skeleton's properties.
func boneNames(sk *asset.Object) []string {
	raw, ok := sk.Properties["bones"].([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, b := range raw {
		if s, ok := b.(string); ok && s != "" {
			out = append(out, s)
		}
	}

	return out
}

// ResampleMotions rewrites every motion's sample rate, scaling its frame
// count to preserve duration.
type ResampleMotions struct{}

// Descriptor implements Filter.
func (f *ResampleMotions) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDResampleMotions,
		Category:   CategoryAnimation,
		Capability: CapabilityModify,
		Options: []OptionSpec{
			{Name: "rate", Type: OptionInt, Default: 30, Description: "target sample rate in frames per second"},
		},
	}
}

// Apply implements Filter.
func (f *ResampleMotions) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	rate := opts.Int("rate", 30)
	if rate <= 0 {
		return nil, Errorf(IDResampleMotions, "rate must be positive, got %d", rate)
	}

	for _, m := range g.ByKind(asset.KindMotion) {
		oldRate := Options(m.Properties).Int("sampleRate", rate)
		frames := Options(m.Properties).Int("frameCount", 0)

		if oldRate > 0 && frames > 0 && oldRate != rate {
			m.Properties["frameCount"] = frames * rate / oldRate
		}

		m.Properties["sampleRate"] = rate
	}

	return g, nil
}

// StripMaterialDetail truncates each material's detail map stack to a
// configured depth. The output relies on run-time texture streaming that
// only the binary targets provide, hence the product restriction.
type StripMaterialDetail struct{}

// Descriptor implements Filter.
func (f *StripMaterialDetail) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDStripMaterialDetail,
		Category:   CategoryGraphics,
		Capability: CapabilityModify,
		Products:   []product.Product{product.Amd64},
		Options: []OptionSpec{
			{Name: "keep", Type: OptionInt, Default: 1, Description: "number of detail maps to keep per material"},
		},
	}
}

// Apply implements Filter.
func (f *StripMaterialDetail) Apply(_ context.Context, g *asset.Graph, opts Options, _ *Context) (*asset.Graph, error) {
	keep := opts.Int("keep", 1)
	if keep < 0 {
		return nil, Errorf(IDStripMaterialDetail, "keep must be non-negative, got %d", keep)
	}

	for _, m := range g.ByKind(asset.KindMaterial) {
		maps, ok := m.Properties["detailMaps"].([]interface{})
		if !ok || len(maps) <= keep {
			continue
		}

		m.Properties["detailMaps"] = maps[:keep]
	}

	return g, nil
}

// kindSummary formats per-kind object counts for preview output.
func kindSummary(g *asset.Graph) string {
	counts := make(map[asset.Kind]int)

	var kinds []asset.Kind

	for _, o := range g.Objects() {
		if counts[o.Kind] == 0 {
			kinds = append(kinds, o.Kind)
		}

		counts[o.Kind]++
	}

	if len(kinds) == 0 {
		return "empty scene"
	}

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}

	return strings.Join(parts, ", ")
}
