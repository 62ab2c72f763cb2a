// Package check provides structural analysis of asset graphs: dangling
// references, unreachable objects, duplicate names, and content
// combinations that tend to break downstream filters.
package check

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/assetpipe/internal/asset"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityInfo is purely informational.
	SeverityInfo Severity = iota
	// SeverityWarning indicates content that may misbehave in filters.
	SeverityWarning
	// SeverityError indicates a structural defect.
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

// ParseSeverity parses a severity string (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q, valid values: error, warning, info", s)
	}
}

// Finding represents a single check result.
type Finding struct {
	RuleID     string   `json:"ruleId"`
	Severity   Severity `json:"severity"`
	ObjectUID  string   `json:"objectUid,omitempty"`
	ObjectName string   `json:"objectName,omitempty"`
	Message    string   `json:"message"`
}

// Check is the interface every rule implements.
type Check interface {
	// ID returns the unique rule identifier (e.g. "GRAPH-001").
	ID() string
	// Run evaluates the graph and returns any findings.
	Run(ctx context.Context, g *asset.Graph) []Finding
}

// Result aggregates findings from all checks.
type Result struct {
	Findings []Finding      `json:"findings"`
	Summary  map[string]int `json:"summary"`
}

// Passed returns true when no finding meets or exceeds the threshold.
func (r *Result) Passed(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return false
		}
	}

	return true
}

// Runner executes a set of checks against a graph.
type Runner struct {
	checks []Check
}

// New creates a Runner with the given checks.
func New(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// Run executes every registered check and returns the result, ordered by
// severity descending then rule ID.
func (r *Runner) Run(ctx context.Context, g *asset.Graph) *Result {
	var all []Finding

	for _, chk := range r.checks {
		all = append(all, chk.Run(ctx, g)...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity > all[j].Severity
		}

		return all[i].RuleID < all[j].RuleID
	})

	summary := make(map[string]int)
	for _, f := range all {
		summary[f.Severity.String()]++
	}

	return &Result{Findings: all, Summary: summary}
}

// DefaultChecks returns every built-in check.
func DefaultChecks() []Check {
	return []Check{
		&DanglingRefCheck{},
		&UnreachableObjectCheck{},
		&DuplicateNameCheck{},
		&MotionWithoutSkeletonCheck{},
	}
}
