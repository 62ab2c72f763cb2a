package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/product"
)

// stubFilter is a scriptable filter for engine tests. It records its
// invocations on a shared trace and can tag the graph or fail on demand.
type stubFilter struct {
	id       string
	products []product.Product
	fail     error
	trace    *[]string
}

func (f *stubFilter) Descriptor() filter.Descriptor {
	return filter.Descriptor{
		ID:         f.id,
		Category:   filter.CategoryUser,
		Capability: filter.CapabilityModify,
		Products:   f.products,
	}
}

func (f *stubFilter) Apply(_ context.Context, g *asset.Graph, _ filter.Options, _ *filter.Context) (*asset.Graph, error) {
	if f.trace != nil {
		*f.trace = append(*f.trace, f.id)
	}

	if f.fail != nil {
		return nil, f.fail
	}

	tag := asset.NewObject(asset.KindSceneNode, "applied_"+f.id)
	if err := g.Add(tag, ""); err != nil {
		return nil, err
	}

	return g, nil
}

func configWith(t *testing.T, name string, graph *asset.Graph, filters ...filter.Filter) *Configuration {
	t.Helper()

	cfg := NewConfiguration(name, graph)
	for _, f := range filters {
		cfg.AddFilter(cfg.Len()-1, filter.NewInstance(f))
	}

	return cfg
}

func hasObjectNamed(g *asset.Graph, name string) bool {
	for _, o := range g.Objects() {
		if o.Name == name {
			return true
		}
	}

	return false
}

func TestRunOne_FiltersRunInOrder(t *testing.T) {
	var trace []string

	cfg := configWith(t, "Default", nil,
		&stubFilter{id: "f1", trace: &trace},
		&stubFilter{id: "f2", trace: &trace},
		&stubFilter{id: "f3", trace: &trace},
	)

	engine := NewEngine(product.None, nil)
	report := engine.RunOne(context.Background(), cfg, &filter.Context{Sink: filter.NopSink{}})

	assert.Equal(t, StatusSucceeded, report.Status)
	assert.Equal(t, StatusSucceeded, cfg.Status())
	assert.Equal(t, []string{"f1", "f2", "f3"}, trace)
	assert.Equal(t, 3, report.Graph.Len())
	assert.Zero(t, report.Errors)
	assert.NoError(t, report.Err)
	assert.GreaterOrEqual(t, report.Duration.Nanoseconds(), int64(0))
}

func TestRunOne_FailureAbortsRemainingFilters(t *testing.T) {
	var trace []string

	cfg := configWith(t, "Default", nil,
		&stubFilter{id: "f1", trace: &trace},
		&stubFilter{id: "f2", trace: &trace, fail: errors.New("boom")},
		&stubFilter{id: "f3", trace: &trace},
	)

	engine := NewEngine(product.None, nil)
	report := engine.RunOne(context.Background(), cfg, &filter.Context{Sink: filter.NopSink{}})

	assert.Equal(t, StatusFailed, report.Status)
	assert.Equal(t, []string{"f1", "f2"}, trace)
	assert.Equal(t, 1, report.Errors)

	var ferr *filter.Error
	require.ErrorAs(t, report.Err, &ferr)
	assert.Equal(t, "f2", ferr.FilterID)

	// The report keeps the output of the last filter that succeeded.
	assert.True(t, hasObjectNamed(report.Graph, "applied_f1"))
	assert.False(t, hasObjectNamed(report.Graph, "applied_f2"))
}

func TestRunOne_RunsFromFreshSnapshotEveryTime(t *testing.T) {
	cfg := configWith(t, "Default", nil, &stubFilter{id: "f1"})

	engine := NewEngine(product.None, nil)
	fctx := &filter.Context{Sink: filter.NopSink{}}

	first := engine.RunOne(context.Background(), cfg, fctx)
	second := engine.RunOne(context.Background(), cfg, fctx)

	// Each run starts over from the snapshot; results never accumulate.
	assert.Equal(t, 1, first.Graph.Len())
	assert.Equal(t, 1, second.Graph.Len())
	assert.Equal(t, 0, cfg.Snapshot().Len())
}

func TestRunOne_IncompatibleFilterWarnsButRuns(t *testing.T) {
	var trace []string

	cfg := configWith(t, "Default", nil,
		&stubFilter{id: "physics", products: []product.Product{product.Win32}, trace: &trace},
	)

	engine := NewEngine(product.XML, nil)
	report := engine.RunOne(context.Background(), cfg, &filter.Context{Sink: filter.NopSink{}})

	assert.Equal(t, StatusSucceeded, report.Status)
	assert.Equal(t, []string{"physics"}, trace)
	assert.Equal(t, 1, report.Warnings)

	var warned bool

	for _, e := range report.Entries {
		if e.Severity == filter.SeverityWarning && e.FilterID == "physics" {
			warned = true
			assert.Contains(t, e.Message, "unsupported by selected product xml")
		}
	}

	assert.True(t, warned)
}

func TestRunOne_CancelledContext(t *testing.T) {
	var trace []string

	cfg := configWith(t, "Default", nil, &stubFilter{id: "f1", trace: &trace})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(product.None, nil)
	report := engine.RunOne(ctx, cfg, &filter.Context{Sink: filter.NopSink{}})

	assert.Equal(t, StatusCancelled, report.Status)
	assert.Empty(t, trace)
	assert.ErrorIs(t, report.Err, context.Canceled)
}

func TestRunAll_FailureIsIsolatedPerConfiguration(t *testing.T) {
	var trace []string

	broken := configWith(t, "Broken", nil, &stubFilter{id: "bad", trace: &trace, fail: errors.New("boom")})
	healthy := configWith(t, "Healthy", nil, &stubFilter{id: "good", trace: &trace})

	set, err := NewSet(broken)
	require.NoError(t, err)
	require.NoError(t, set.Add(healthy))

	engine := NewEngine(product.None, nil)
	reports := engine.RunAll(context.Background(), set, &filter.Context{Sink: filter.NopSink{}})

	require.Len(t, reports, 2)
	assert.Equal(t, StatusFailed, reports[0].Status)
	assert.Equal(t, StatusSucceeded, reports[1].Status)
	assert.Equal(t, []string{"bad", "good"}, trace)
}

func TestRunAll_CancellationSkipsRemaining(t *testing.T) {
	set := newTestSet(t, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(product.None, nil)
	reports := engine.RunAll(ctx, set, &filter.Context{Sink: filter.NopSink{}})

	assert.Empty(t, reports)
}

func TestRunNamed(t *testing.T) {
	var trace []string

	set := newTestSet(t, "A")
	target := configWith(t, "B", nil, &stubFilter{id: "only", trace: &trace})
	require.NoError(t, set.Add(target))

	engine := NewEngine(product.None, nil)

	report, err := engine.RunNamed(context.Background(), set, "B", &filter.Context{Sink: filter.NopSink{}})
	require.NoError(t, err)
	assert.Equal(t, "B", report.Configuration)
	assert.Equal(t, []string{"only"}, trace)

	_, err = engine.RunNamed(context.Background(), set, "missing", &filter.Context{Sink: filter.NopSink{}})
	assert.Error(t, err)
}

func TestRecordingSink_CountsAndForwards(t *testing.T) {
	report := &Report{}
	inner := &countingSink{}
	rec := &recordingSink{inner: inner, report: report}

	rec.Emit(filter.SeverityInfo, "", "i")
	rec.Emit(filter.SeverityWarning, "f", "w")
	rec.Emit(filter.SeverityError, "f", "e")

	assert.Equal(t, 1, report.Warnings)
	assert.Equal(t, 1, report.Errors)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, 3, inner.calls)
}

type countingSink struct {
	calls int
}

func (s *countingSink) Emit(filter.Severity, string, string) {
	s.calls++
}
