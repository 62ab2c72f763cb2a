package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/product"
)

// LogEntry is one record of pipeline log output.
type LogEntry struct {
	Severity filter.Severity
	FilterID string
	Message  string
}

// Report is the terminal result of running one configuration.
type Report struct {
	// Configuration names the configuration that ran.
	Configuration string

	// Status is the terminal state.
	Status Status

	// Graph is the last successfully produced graph. On failure it holds
	// the output of the last filter that succeeded.
	Graph *asset.Graph

	// Entries are the log entries produced during the run.
	Entries []LogEntry

	// Warnings and Errors count entries by severity.
	Warnings int
	Errors   int

	// Err is the filter error that terminated the run, if any.
	Err error

	// Duration is the wall-clock run time.
	Duration time.Duration
}

// Engine orchestrates configuration execution. It is single-threaded by
// design: filters within a configuration run strictly in list order, and
// runAll executes configurations sequentially, each over its own private
// graph copy.
type Engine struct {
	product product.Product
	sink    filter.Sink
}

// NewEngine creates an engine for the selected product, reporting through
// sink. A nil sink discards log output.
func NewEngine(selected product.Product, sink filter.Sink) *Engine {
	if sink == nil {
		sink = filter.NopSink{}
	}

	return &Engine{product: selected, sink: sink}
}

// RunOne executes a single configuration: its filters run in stored order
// over a fresh copy of the configuration's snapshot. A filter incompatible
// with the selected product is flagged with a warning but still executed.
// A filter error aborts the remaining filters of this configuration only;
// context cancellation between filters aborts with a Cancelled status.
func (e *Engine) RunOne(ctx context.Context, cfg *Configuration, fctx *filter.Context) *Report {
	started := time.Now()

	report := &Report{Configuration: cfg.Name(), Status: StatusSucceeded}

	rec := &recordingSink{inner: e.sink, report: report}

	runCtx := fctx.WithSink(rec)

	current := cfg.snapshot.Clone()
	report.Graph = current

	rec.Emit(filter.SeverityInfo, "", fmt.Sprintf("running configuration %q (%d filters)", cfg.Name(), cfg.Len()))

	for idx, inst := range cfg.Filters() {
		if err := ctx.Err(); err != nil {
			rec.Emit(filter.SeverityWarning, "",
				fmt.Sprintf("run cancelled before filter %d (%s)", idx+1, inst.ID()))

			report.Status = StatusCancelled
			report.Err = err

			break
		}

		desc := inst.Filter.Descriptor()
		if !desc.IsCompatible(e.product) {
			rec.Emit(filter.SeverityWarning, desc.ID,
				fmt.Sprintf("output unsupported by selected product %s", e.product))
		}

		next, err := inst.Filter.Apply(ctx, current, inst.Options, runCtx)
		if err != nil {
			ferr := asFilterError(desc.ID, err)
			rec.Emit(filter.SeverityError, desc.ID, ferr.Err.Error())

			report.Status = StatusFailed
			report.Err = ferr

			break
		}

		current = next
		report.Graph = current
	}

	report.Duration = time.Since(started)
	cfg.status = report.Status

	rec.Emit(filter.SeverityInfo, "",
		fmt.Sprintf("configuration %q finished: %s (%d warnings, %d errors)",
			cfg.Name(), report.Status, report.Warnings, report.Errors))

	return report
}

// RunAll executes every configuration in the set in insertion order. A
// failure in one configuration never prevents the others from running;
// context cancellation skips the remaining configurations.
func (e *Engine) RunAll(ctx context.Context, set *Set, fctx *filter.Context) []*Report {
	reports := make([]*Report, 0, set.Len())

	for _, cfg := range set.All() {
		if ctx.Err() != nil {
			break
		}

		reports = append(reports, e.RunOne(ctx, cfg, fctx))
	}

	return reports
}

// RunNamed executes exactly the named configuration.
func (e *Engine) RunNamed(ctx context.Context, set *Set, name string, fctx *filter.Context) (*Report, error) {
	cfg, ok := set.Get(name)
	if !ok {
		return nil, fmt.Errorf("configuration %q not found", name)
	}

	return e.RunOne(ctx, cfg, fctx), nil
}

// asFilterError normalizes an apply error into a *filter.Error.
func asFilterError(filterID string, err error) *filter.Error {
	var ferr *filter.Error
	if errors.As(err, &ferr) {
		return ferr
	}

	return &filter.Error{FilterID: filterID, Err: err}
}

// recordingSink forwards entries to the engine sink while accumulating them
// on the report.
type recordingSink struct {
	inner  filter.Sink
	report *Report
}

// Emit implements filter.Sink.
func (r *recordingSink) Emit(sev filter.Severity, filterID, message string) {
	r.report.Entries = append(r.report.Entries, LogEntry{Severity: sev, FilterID: filterID, Message: message})

	switch sev {
	case filter.SeverityWarning:
		r.report.Warnings++
	case filter.SeverityError:
		r.report.Errors++
	}

	r.inner.Emit(sev, filterID, message)
}
