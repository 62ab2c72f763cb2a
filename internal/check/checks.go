package check

import (
	"context"
	"fmt"

	"github.com/hupe1980/assetpipe/internal/asset"
)

// DanglingRefCheck reports references and child links that resolve to no
// object in the graph.
type DanglingRefCheck struct{}

// ID implements Check.
func (c *DanglingRefCheck) ID() string { return "GRAPH-001" }

// Run implements Check.
func (c *DanglingRefCheck) Run(_ context.Context, g *asset.Graph) []Finding {
	var findings []Finding

	objects := append([]*asset.Object{g.Root()}, g.Objects()...)

	for _, o := range objects {
		for _, ref := range o.Refs {
			if _, ok := g.Get(ref); !ok {
				findings = append(findings, Finding{
					RuleID:     c.ID(),
					Severity:   SeverityError,
					ObjectUID:  o.UID,
					ObjectName: o.Name,
					Message:    fmt.Sprintf("reference to unknown object %s", ref),
				})
			}
		}

		for _, child := range o.Children {
			if _, ok := g.Get(child); !ok {
				findings = append(findings, Finding{
					RuleID:     c.ID(),
					Severity:   SeverityError,
					ObjectUID:  o.UID,
					ObjectName: o.Name,
					Message:    fmt.Sprintf("child link to unknown object %s", child),
				})
			}
		}
	}

	return findings
}

// UnreachableObjectCheck reports objects that cannot be reached from the
// root container via child links. Such objects survive serialization as
// top-level entries, which usually is not what the author intended.
type UnreachableObjectCheck struct{}

// ID implements Check.
func (c *UnreachableObjectCheck) ID() string { return "GRAPH-002" }

// Run implements Check.
func (c *UnreachableObjectCheck) Run(_ context.Context, g *asset.Graph) []Finding {
	reachable := make(map[string]bool)

	var visit func(uid string)

	visit = func(uid string) {
		if reachable[uid] {
			return
		}

		reachable[uid] = true

		o, ok := g.Get(uid)
		if !ok {
			return
		}

		for _, child := range o.Children {
			visit(child)
		}
	}

	visit(g.Root().UID)

	var findings []Finding

	for _, o := range g.Objects() {
		if !reachable[o.UID] {
			findings = append(findings, Finding{
				RuleID:     c.ID(),
				Severity:   SeverityWarning,
				ObjectUID:  o.UID,
				ObjectName: o.Name,
				Message:    "object is not reachable from the root container",
			})
		}
	}

	return findings
}

// DuplicateNameCheck reports objects sharing both kind and name. Merged
// inputs keep colliding objects distinct, so duplicates are legal but worth
// surfacing before filters that address objects by name run.
type DuplicateNameCheck struct{}

// ID implements Check.
func (c *DuplicateNameCheck) ID() string { return "GRAPH-003" }

// Run implements Check.
func (c *DuplicateNameCheck) Run(_ context.Context, g *asset.Graph) []Finding {
	seen := make(map[string]int)

	for _, o := range g.Objects() {
		seen[string(o.Kind)+"/"+o.Name]++
	}

	var findings []Finding

	reported := make(map[string]bool)

	for _, o := range g.Objects() {
		key := string(o.Kind) + "/" + o.Name
		if seen[key] > 1 && !reported[key] {
			reported[key] = true

			findings = append(findings, Finding{
				RuleID:     c.ID(),
				Severity:   SeverityWarning,
				ObjectUID:  o.UID,
				ObjectName: o.Name,
				Message:    fmt.Sprintf("%d objects named %q of kind %s", seen[key], o.Name, o.Kind),
			})
		}
	}

	return findings
}

// MotionWithoutSkeletonCheck reports scenes that carry motions but no
// skeleton to bind them to.
type MotionWithoutSkeletonCheck struct{}

// ID implements Check.
func (c *MotionWithoutSkeletonCheck) ID() string { return "GRAPH-004" }

// Run implements Check.
func (c *MotionWithoutSkeletonCheck) Run(_ context.Context, g *asset.Graph) []Finding {
	motions := g.ByKind(asset.KindMotion)
	if len(motions) == 0 || len(g.ByKind(asset.KindSkeleton)) > 0 {
		return nil
	}

	findings := make([]Finding, 0, len(motions))

	for _, m := range motions {
		findings = append(findings, Finding{
			RuleID:     c.ID(),
			Severity:   SeverityWarning,
			ObjectUID:  m.UID,
			ObjectName: m.Name,
			Message:    "motion present but the scene has no skeleton",
		})
	}

	return findings
}
