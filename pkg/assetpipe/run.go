// Package assetpipe provides a public Go API for running filter
// configurations over serialized asset files.
//
// This package exposes the pipeline as a library, allowing programmatic
// use without the CLI.
//
// Basic usage:
//
//	result, err := assetpipe.Run(ctx, []string{"scene.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, report := range result.Reports {
//	    fmt.Println(report.Configuration, report.Status)
//	}
//
// With options:
//
//	result, err := assetpipe.Run(ctx, inputs,
//	    assetpipe.WithSettingsFile("recipe.yaml"),
//	    assetpipe.WithProduct(product.Win32),
//	    assetpipe.WithOutputPath("out/"),
//	)
package assetpipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/merge"
	"github.com/hupe1980/assetpipe/internal/pipeline"
	"github.com/hupe1980/assetpipe/internal/product"
	"github.com/hupe1980/assetpipe/internal/settings"
)

// Option configures a pipeline run. Use the With* functions to create
// Options.
type Option func(*options)

// options holds the internal configuration for a run.
type options struct {
	// Input collection.
	recursive  bool
	extensions []string

	// Settings.
	settingsFile  string
	settingsData  []byte
	configuration string

	// Run context.
	assetPath  string
	outputPath string
	selected   product.Product

	// Log capture.
	sink filter.Sink
}

// --- Input collection ---

// WithRecursive descends into directory inputs.
func WithRecursive() Option { return func(o *options) { o.recursive = true } }

// WithExtensions sets the extensions collected from directory inputs
// (default: .yaml, .yml).
func WithExtensions(exts []string) Option { return func(o *options) { o.extensions = exts } }

// --- Settings ---

// WithSettingsFile loads the configuration set from a settings file.
// A malformed file falls back to the built-in defaults.
func WithSettingsFile(path string) Option { return func(o *options) { o.settingsFile = path } }

// WithSettingsData loads the configuration set from raw settings bytes.
// Takes precedence over WithSettingsFile.
func WithSettingsData(data []byte) Option { return func(o *options) { o.settingsData = data } }

// WithConfiguration runs only the named configuration.
func WithConfiguration(name string) Option { return func(o *options) { o.configuration = name } }

// --- Run context ---

// WithAssetPath sets the base path for relative asset references
// (default: the first input's directory).
func WithAssetPath(path string) Option { return func(o *options) { o.assetPath = path } }

// WithOutputPath sets the destination for write filters without an
// explicit path option.
func WithOutputPath(path string) Option { return func(o *options) { o.outputPath = path } }

// WithProduct sets the run-time target for compatibility warnings.
func WithProduct(p product.Product) Option { return func(o *options) { o.selected = p } }

// WithSink forwards pipeline log output to sink in addition to the
// per-report entries.
func WithSink(sink filter.Sink) Option { return func(o *options) { o.sink = sink } }

// Result holds the output of a pipeline run.
type Result struct {
	// Reports are the per-configuration outcomes, in execution order.
	Reports []*pipeline.Report

	// Merged is the merged input graph the configurations started from.
	Merged *asset.Graph

	// Sources are the inputs that loaded successfully.
	Sources []string

	// FailedInputs are the inputs that could not be loaded.
	FailedInputs []string

	// Failed reports whether any configuration failed or was cancelled.
	Failed bool
}

// Run loads and merges the inputs, builds the configuration set, and runs
// it. Inputs that fail to load are excluded; Run fails only when nothing
// loads at all. A filter failure inside one configuration never aborts its
// siblings — inspect Result.Reports for per-configuration outcomes.
func Run(ctx context.Context, inputs []string, opts ...Option) (*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New("at least one input is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	o.applyDefaults()

	// 1. Collect and merge inputs.
	paths, err := merge.CollectInputs(inputs, o.recursive, o.extensions)
	if err != nil {
		return nil, err
	}

	res, err := merge.Files(ctx, paths, o.sink)
	if err != nil {
		return nil, err
	}

	assetPath := o.assetPath
	if assetPath == "" && len(res.PathCandidates) > 0 {
		assetPath = res.PathCandidates[0]
	}

	// 2. Build the configuration set.
	set, err := buildSet(o, res.Graph)
	if err != nil {
		return nil, err
	}

	// 3. Run.
	engine := pipeline.NewEngine(o.selected, o.sink)

	fctx := &filter.Context{
		AssetPath:  assetPath,
		OutputPath: o.outputPath,
		Product:    o.selected,
		Sink:       o.sink,
	}

	var reports []*pipeline.Report

	if o.configuration != "" {
		report, runErr := engine.RunNamed(ctx, set, o.configuration, fctx)
		if runErr != nil {
			return nil, runErr
		}

		reports = []*pipeline.Report{report}
	} else {
		reports = engine.RunAll(ctx, set, fctx)
	}

	result := &Result{
		Reports: reports,
		Merged:  res.Graph,
		Sources: res.Sources,
	}

	for _, loadErr := range res.Failed {
		result.FailedInputs = append(result.FailedInputs, loadErr.Path)
	}

	for _, report := range reports {
		if report.Status != pipeline.StatusSucceeded {
			result.Failed = true
		}
	}

	return result, nil
}

// applyDefaults sets zero-value fields to sensible defaults.
func (o *options) applyDefaults() {
	if len(o.extensions) == 0 {
		o.extensions = []string{".yaml", ".yml"}
	}

	if o.sink == nil {
		o.sink = filter.NopSink{}
	}
}

// buildSet resolves the configuration set from the options, falling back to
// the built-in defaults when no settings are given or they are malformed.
func buildSet(o *options, graph *asset.Graph) (*pipeline.Set, error) {
	reg := filter.Default()

	if len(o.settingsData) > 0 {
		set, err := settings.Load(o.settingsData, reg, graph)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}

		return set, nil
	}

	if o.settingsFile != "" {
		set, err := settings.LoadFile(o.settingsFile, reg, graph)
		if err == nil {
			return set, nil
		}

		var loadErr *settings.LoadError
		if !errors.As(err, &loadErr) {
			return nil, err
		}
	}

	return settings.Defaults(reg, graph)
}
