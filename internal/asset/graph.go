package asset

import (
	"fmt"
)

// RootName is the name given to the synthetic root container every graph
// is anchored under.
const RootName = "root"

// Graph is a mutable object graph with a synthetic root container.
// Insertion order is preserved so serialization is deterministic.
type Graph struct {
	rootUID string
	order   []string
	objects map[string]*Object
}

// New creates an empty graph containing only the root container.
func New() *Graph {
	root := NewObject(KindContainer, RootName)

	g := &Graph{
		rootUID: root.UID,
		objects: map[string]*Object{root.UID: root},
		order:   []string{root.UID},
	}

	return g
}

// Root returns the root container object.
func (g *Graph) Root() *Object {
	return g.objects[g.rootUID]
}

// Get returns the object with the given UID.
func (g *Graph) Get(uid string) (*Object, bool) {
	o, ok := g.objects[uid]
	return o, ok
}

// Len returns the number of objects in the graph, excluding the root.
func (g *Graph) Len() int {
	return len(g.objects) - 1
}

// Objects returns all objects except the root, in insertion order.
func (g *Graph) Objects() []*Object {
	out := make([]*Object, 0, len(g.order)-1)

	for _, uid := range g.order {
		if uid == g.rootUID {
			continue
		}

		out = append(out, g.objects[uid])
	}

	return out
}

// TopLevel returns the objects parented directly under the root container.
func (g *Graph) TopLevel() []*Object {
	root := g.Root()
	out := make([]*Object, 0, len(root.Children))

	for _, uid := range root.Children {
		if o, ok := g.objects[uid]; ok {
			out = append(out, o)
		}
	}

	return out
}

// ByKind returns all objects of the given kind, in insertion order.
func (g *Graph) ByKind(kind Kind) []*Object {
	var out []*Object

	for _, uid := range g.order {
		if o := g.objects[uid]; o.Kind == kind && uid != g.rootUID {
			out = append(out, o)
		}
	}

	return out
}

// Add inserts obj under the parent with the given UID. An empty parentUID
// parents the object under the root container. The object's UID must not
// already be present in the graph.
func (g *Graph) Add(obj *Object, parentUID string) error {
	if obj.UID == "" {
		return fmt.Errorf("object %q has no UID", obj.Name)
	}

	if _, exists := g.objects[obj.UID]; exists {
		return fmt.Errorf("object with UID %s already present", obj.UID)
	}

	if parentUID == "" {
		parentUID = g.rootUID
	}

	parent, ok := g.objects[parentUID]
	if !ok {
		return fmt.Errorf("parent %s not found", parentUID)
	}

	g.objects[obj.UID] = obj
	g.order = append(g.order, obj.UID)
	parent.Children = append(parent.Children, obj.UID)

	return nil
}

// Remove deletes the object with the given UID and strips every reference
// and parent link pointing at it, keeping the graph structurally valid.
// Children of the removed object are re-parented under the root container.
// The root itself cannot be removed.
func (g *Graph) Remove(uid string) error {
	if uid == g.rootUID {
		return fmt.Errorf("cannot remove the root container")
	}

	removed, ok := g.objects[uid]
	if !ok {
		return fmt.Errorf("object %s not found", uid)
	}

	delete(g.objects, uid)
	g.order = deleteString(g.order, uid)

	for _, o := range g.objects {
		o.Refs = deleteString(o.Refs, uid)
		o.Children = deleteString(o.Children, uid)
	}

	// Orphaned children move to the top level.
	root := g.Root()
	for _, child := range removed.Children {
		if _, exists := g.objects[child]; exists {
			root.Children = append(root.Children, child)
		}
	}

	return nil
}

// RemapUID rewrites an object's UID and every reference to it. Used by the
// input merger to keep colliding objects from different source files distinct.
func (g *Graph) RemapUID(old, updated string) error {
	obj, ok := g.objects[old]
	if !ok {
		return fmt.Errorf("object %s not found", old)
	}

	if _, exists := g.objects[updated]; exists {
		return fmt.Errorf("object with UID %s already present", updated)
	}

	delete(g.objects, old)
	obj.UID = updated
	g.objects[updated] = obj

	for i, uid := range g.order {
		if uid == old {
			g.order[i] = updated
		}
	}

	if g.rootUID == old {
		g.rootUID = updated
	}

	for _, o := range g.objects {
		replaceString(o.Refs, old, updated)
		replaceString(o.Children, old, updated)
	}

	return nil
}

// Clone returns a deep copy of the graph. Object UIDs are preserved, so the
// copy is structurally equal to the original while sharing no mutable state.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		rootUID: g.rootUID,
		order:   append([]string(nil), g.order...),
		objects: make(map[string]*Object, len(g.objects)),
	}

	for uid, o := range g.objects {
		c.objects[uid] = o.Clone()
	}

	return c
}

// Validate checks structural validity: the root exists and every reference
// and child link resolves to an object in the graph.
func (g *Graph) Validate() error {
	if _, ok := g.objects[g.rootUID]; !ok {
		return fmt.Errorf("root container %s missing", g.rootUID)
	}

	for _, o := range g.objects {
		for _, ref := range o.Refs {
			if _, ok := g.objects[ref]; !ok {
				return fmt.Errorf("object %q (%s) references unknown object %s", o.Name, o.UID, ref)
			}
		}

		for _, child := range o.Children {
			if _, ok := g.objects[child]; !ok {
				return fmt.Errorf("object %q (%s) parents unknown object %s", o.Name, o.UID, child)
			}
		}
	}

	return nil
}

func deleteString(s []string, v string) []string {
	out := s[:0]

	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}

	return out
}

func replaceString(s []string, old, updated string) {
	for i, e := range s {
		if e == old {
			s[i] = updated
		}
	}
}
