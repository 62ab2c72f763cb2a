// Package filter defines the contract every pipeline filter satisfies: a
// declared descriptor (identifier, category, capability, option schema,
// supported products) plus an Apply operation over an asset graph. Filters
// are stateless between invocations except for their bound option values.
package filter

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/maputil"
	"github.com/hupe1980/assetpipe/internal/product"
)

// Category groups filters for presentation.
type Category string

// Filter categories.
const (
	CategoryCore      Category = "core"
	CategoryPhysics   Category = "physics"
	CategoryAnimation Category = "animation"
	CategoryGraphics  Category = "graphics"
	CategoryUser      Category = "user"
)

// Capability describes what a filter does to the graph.
type Capability string

// Filter capabilities. Preview and Write are side effects: the filter
// returns its input graph unchanged in addition to performing its effect.
const (
	CapabilityCreate  Capability = "create"
	CapabilityModify  Capability = "modify"
	CapabilityDelete  Capability = "delete"
	CapabilityPreview Capability = "preview"
	CapabilityWrite   Capability = "write"
)

// IsSideEffect reports whether the capability leaves the graph untouched.
func (c Capability) IsSideEffect() bool {
	return c == CapabilityPreview || c == CapabilityWrite
}

// OptionType declares the value type of a filter option.
type OptionType string

// Option value types.
const (
	OptionString OptionType = "string"
	OptionInt    OptionType = "int"
	OptionFloat  OptionType = "float"
	OptionBool   OptionType = "bool"
)

// OptionSpec describes a single configurable filter option.
type OptionSpec struct {
	Name        string
	Type        OptionType
	Default     interface{}
	Description string
}

// Descriptor is a filter's immutable metadata.
type Descriptor struct {
	// ID uniquely identifies the filter kind; it is the binding key in
	// persisted configuration sets.
	ID string

	// Category groups the filter for presentation.
	Category Category

	// Capability describes the filter's effect on the graph.
	Capability Capability

	// Products lists the run-time targets under which the filter's output
	// is loadable. Empty means loadable everywhere.
	Products []product.Product

	// Options is the filter's option schema.
	Options []OptionSpec
}

// IsCompatible reports whether output generated by this filter is loadable
// under the selected product. A "none" selection, or an empty declared
// product set, is always compatible. Compatibility is advisory only.
func (d Descriptor) IsCompatible(selected product.Product) bool {
	if selected == product.None || len(d.Products) == 0 {
		return true
	}

	for _, p := range d.Products {
		if p == selected {
			return true
		}
	}

	return false
}

// Severity ranks a log entry emitted through the sink.
type Severity int

// Log severities.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Sink is the write channel the pipeline core uses to communicate with the
// presentation layer. Implementations must not block the caller.
type Sink interface {
	// Emit reports a log entry. filterID is empty for engine-level entries.
	Emit(severity Severity, filterID, message string)
}

// NopSink discards every entry.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(Severity, string, string) {}

// Context carries the shared, read-only run context handed to every filter
// in a run: the resolved asset path for relative references, the output
// destination for write side effects, the selected product, and the sink.
type Context struct {
	// AssetPath is the base path relative asset references resolve against.
	// Empty means the current working context.
	AssetPath string

	// OutputPath is the destination for write side effects. A filter's
	// "path" option takes precedence when set.
	OutputPath string

	// Product is the selected run-time target.
	Product product.Product

	// Sink receives log output. Never nil during a run.
	Sink Sink
}

// WithSink returns a copy of the context emitting through sink. The
// original is left untouched; run contexts are shared read-only state.
func (c *Context) WithSink(sink Sink) *Context {
	cp := *c
	cp.Sink = sink

	return &cp
}

// Filter is a single transformation or side-effect unit in the pipeline.
type Filter interface {
	// Descriptor returns the filter's immutable metadata.
	Descriptor() Descriptor

	// Apply runs the filter over the graph and returns the resulting graph.
	// Apply takes ownership of g and must leave the returned graph
	// structurally valid. Side-effecting filters return g unchanged.
	Apply(ctx context.Context, g *asset.Graph, opts Options, fctx *Context) (*asset.Graph, error)
}

// Error marks a filter failure. It is fatal to the configuration being run
// but never to sibling configurations.
type Error struct {
	FilterID string
	Err      error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("filter %s: %v", e.FilterID, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Errorf creates a filter Error with a formatted message.
func Errorf(filterID, format string, args ...interface{}) *Error {
	return &Error{FilterID: filterID, Err: fmt.Errorf(format, args...)}
}

// Options holds a filter instance's bound option values.
type Options map[string]interface{}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}

	return Options(maputil.DeepCopyMap(o))
}

// String returns the named option coerced to string, or def when unset.
func (o Options) String(name, def string) string {
	v, ok := o[name]
	if !ok {
		return def
	}

	return cast.ToString(v)
}

// Int returns the named option coerced to int, or def when unset.
func (o Options) Int(name string, def int) int {
	v, ok := o[name]
	if !ok {
		return def
	}

	return cast.ToInt(v)
}

// Float returns the named option coerced to float64, or def when unset.
func (o Options) Float(name string, def float64) float64 {
	v, ok := o[name]
	if !ok {
		return def
	}

	return cast.ToFloat64(v)
}

// Bool returns the named option coerced to bool, or def when unset.
func (o Options) Bool(name string, def bool) bool {
	v, ok := o[name]
	if !ok {
		return def
	}

	return cast.ToBool(v)
}

// Instance pairs a filter with its bound option values. Instances are never
// shared between configurations; copying a configuration clones them.
type Instance struct {
	// Filter is the underlying stateless filter implementation.
	Filter Filter

	// Options are the instance's bound option values.
	Options Options
}

// NewInstance creates an instance with option defaults from the descriptor.
func NewInstance(f Filter) *Instance {
	opts := make(Options)

	for _, spec := range f.Descriptor().Options {
		if spec.Default != nil {
			opts[spec.Name] = spec.Default
		}
	}

	return &Instance{Filter: f, Options: opts}
}

// ID returns the filter identifier.
func (i *Instance) ID() string {
	return i.Filter.Descriptor().ID
}

// Clone returns a copy with independently mutable options. The underlying
// filter is stateless and therefore shared.
func (i *Instance) Clone() *Instance {
	return &Instance{Filter: i.Filter, Options: i.Options.Clone()}
}

// SetOption binds a value to a declared option. Unknown option names are
// rejected so persisted configurations fail loudly instead of silently
// carrying dead keys.
func (i *Instance) SetOption(name string, value interface{}) error {
	for _, spec := range i.Filter.Descriptor().Options {
		if spec.Name == name {
			if i.Options == nil {
				i.Options = make(Options)
			}

			i.Options[name] = value

			return nil
		}
	}

	return fmt.Errorf("filter %s has no option %q", i.ID(), name)
}
