// Package asset defines the in-memory object graph that pipeline filters
// read and write. A graph is a set of typed, uniquely identified objects
// connected by references, anchored under a synthetic root container.
package asset

import (
	"github.com/google/uuid"

	"github.com/hupe1980/assetpipe/internal/maputil"
)

// Kind classifies an object in the graph.
type Kind string

// Built-in object kinds. Filters may introduce additional kinds; the graph
// itself treats kinds as opaque labels.
const (
	KindContainer  Kind = "Container"
	KindSceneNode  Kind = "SceneNode"
	KindSkeleton   Kind = "Skeleton"
	KindMotion     Kind = "Motion"
	KindMaterial   Kind = "Material"
	KindRigidBody  Kind = "RigidBody"
	KindConstraint Kind = "Constraint"
)

// Object is a single node in an asset graph.
type Object struct {
	// UID uniquely identifies the object within its graph.
	UID string

	// Name is the human-readable object name. Names need not be unique.
	Name string

	// Kind classifies the object.
	Kind Kind

	// Properties holds arbitrary typed payload data.
	Properties map[string]interface{}

	// Refs are UIDs of objects this object references. Reference cycles
	// are allowed.
	Refs []string

	// Children are UIDs of objects parented under this object.
	Children []string
}

// NewObject creates an object of the given kind with a fresh UID.
func NewObject(kind Kind, name string) *Object {
	return &Object{
		UID:        uuid.NewString(),
		Name:       name,
		Kind:       kind,
		Properties: make(map[string]interface{}),
	}
}

// Clone returns a deep copy of the object. The copy keeps the same UID so
// identity is preserved across graph snapshots.
func (o *Object) Clone() *Object {
	c := &Object{
		UID:        o.UID,
		Name:       o.Name,
		Kind:       o.Kind,
		Properties: maputil.DeepCopyMap(o.Properties),
	}

	if o.Refs != nil {
		c.Refs = append([]string(nil), o.Refs...)
	}

	if o.Children != nil {
		c.Children = append([]string(nil), o.Children...)
	}

	return c
}
