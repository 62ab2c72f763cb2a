// Package pipeline implements the execution engine that drives ordered
// filter lists (configurations) over private copies of an asset graph.
// Failures are isolated per configuration: one failing filter aborts the
// rest of its configuration and nothing else.
package pipeline

import (
	"fmt"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/filter"
)

// Status is a configuration's terminal execution state.
type Status string

// Configuration statuses.
const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Direction moves a filter within a configuration's list.
type Direction int

// Move directions.
const (
	MoveUp   Direction = -1
	MoveDown Direction = 1
)

// Configuration is an ordered list of filter instances bound to a private
// copy of the source asset graph. Every run starts from that snapshot, so
// re-running a failed configuration always resets cleanly.
type Configuration struct {
	name     string
	filters  []*filter.Instance
	snapshot *asset.Graph
	status   Status
}

// NewConfiguration creates an empty configuration holding its own copy of
// the given graph. A nil graph yields an empty snapshot.
func NewConfiguration(name string, graph *asset.Graph) *Configuration {
	if graph == nil {
		graph = asset.New()
	}

	return &Configuration{
		name:     name,
		snapshot: graph.Clone(),
		status:   StatusPending,
	}
}

// Copy clones the configuration under a new name: filter instances are
// copied by value and the snapshot is duplicated, so later edits to either
// configuration never affect the other.
func (c *Configuration) Copy(name string) *Configuration {
	cp := &Configuration{
		name:     name,
		snapshot: c.snapshot.Clone(),
		status:   StatusPending,
		filters:  make([]*filter.Instance, len(c.filters)),
	}

	for i, inst := range c.filters {
		cp.filters[i] = inst.Clone()
	}

	return cp
}

// Name returns the configuration name.
func (c *Configuration) Name() string { return c.name }

// Status returns the last execution status.
func (c *Configuration) Status() Status { return c.status }

// Snapshot returns a copy of the configuration's private graph.
func (c *Configuration) Snapshot() *asset.Graph { return c.snapshot.Clone() }

// SetGraph replaces the private graph snapshot with a copy of g.
func (c *Configuration) SetGraph(g *asset.Graph) {
	c.snapshot = g.Clone()
	c.status = StatusPending
}

// Filters returns the filter instances in execution order. The slice is a
// copy; the instances are live.
func (c *Configuration) Filters() []*filter.Instance {
	return append([]*filter.Instance(nil), c.filters...)
}

// Len returns the number of filter instances.
func (c *Configuration) Len() int { return len(c.filters) }

// FilterAt returns the instance at the given index.
func (c *Configuration) FilterAt(i int) (*filter.Instance, error) {
	if i < 0 || i >= len(c.filters) {
		return nil, fmt.Errorf("filter index %d out of range [0,%d)", i, len(c.filters))
	}

	return c.filters[i], nil
}

// AddFilter inserts an instance after the given index. An afterIndex below
// zero prepends; one at or past the end appends.
func (c *Configuration) AddFilter(afterIndex int, inst *filter.Instance) {
	pos := afterIndex + 1

	if pos < 0 {
		pos = 0
	}

	if pos > len(c.filters) {
		pos = len(c.filters)
	}

	c.filters = append(c.filters, nil)
	copy(c.filters[pos+1:], c.filters[pos:])
	c.filters[pos] = inst
}

// RemoveFilter deletes the instance at the given index.
func (c *Configuration) RemoveFilter(i int) error {
	if i < 0 || i >= len(c.filters) {
		return fmt.Errorf("filter index %d out of range [0,%d)", i, len(c.filters))
	}

	c.filters = append(c.filters[:i], c.filters[i+1:]...)

	return nil
}

// MoveFilter shifts the instance at index one position in the given
// direction. Moves past the list bounds are clamped to a no-op, not an
// error; an invalid index is.
func (c *Configuration) MoveFilter(i int, dir Direction) error {
	if i < 0 || i >= len(c.filters) {
		return fmt.Errorf("filter index %d out of range [0,%d)", i, len(c.filters))
	}

	j := i + int(dir)
	if j < 0 || j >= len(c.filters) {
		return nil
	}

	c.filters[i], c.filters[j] = c.filters[j], c.filters[i]

	return nil
}
