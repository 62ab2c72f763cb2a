package filter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/assetpipe/internal/asset"
	"github.com/hupe1980/assetpipe/internal/asset/codec"
	"github.com/hupe1980/assetpipe/internal/output"
)

// PreviewScene emits a per-kind object summary through the sink. As a side
// effect filter it returns the incoming graph unchanged, so downstream
// filters see the same data whether or not it ran.
type PreviewScene struct{}

// Descriptor implements Filter.
func (f *PreviewScene) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDPreviewScene,
		Category:   CategoryCore,
		Capability: CapabilityPreview,
	}
}

// Apply implements Filter.
func (f *PreviewScene) Apply(_ context.Context, g *asset.Graph, _ Options, fctx *Context) (*asset.Graph, error) {
	fctx.Sink.Emit(SeverityInfo, IDPreviewScene,
		fmt.Sprintf("scene: %d objects (%s)", g.Len(), kindSummary(g)))

	for _, top := range g.TopLevel() {
		fctx.Sink.Emit(SeverityInfo, IDPreviewScene,
			fmt.Sprintf("top-level %s %q", top.Kind, top.Name))
	}

	return g, nil
}

// WriteAsset serializes the current graph to disk. The destination comes
// from the instance's path option, falling back to the run context's output
// path; a relative destination resolves against the run's asset path. The
// graph is returned unchanged.
type WriteAsset struct{}

// Descriptor implements Filter.
func (f *WriteAsset) Descriptor() Descriptor {
	return Descriptor{
		ID:         IDWriteAsset,
		Category:   CategoryCore,
		Capability: CapabilityWrite,
		Options: []OptionSpec{
			{Name: "path", Type: OptionString, Default: "", Description: "output file path (overrides the run output path)"},
			{Name: "suffix", Type: OptionString, Default: "", Description: "suffix appended to the output file name"},
		},
	}
}

// Apply implements Filter.
func (f *WriteAsset) Apply(_ context.Context, g *asset.Graph, opts Options, fctx *Context) (*asset.Graph, error) {
	path := opts.String("path", "")
	if path == "" {
		path = fctx.OutputPath
	}

	if path == "" {
		return nil, Errorf(IDWriteAsset, "no output path: set the path option or the run output path")
	}

	if !filepath.IsAbs(path) && fctx.AssetPath != "" {
		path = filepath.Join(fctx.AssetPath, path)
	}

	if suffix := opts.String("suffix", ""); suffix != "" {
		path = applySuffix(path, suffix)
	}

	data, err := codec.Marshal(g)
	if err != nil {
		return nil, &Error{FilterID: IDWriteAsset, Err: err}
	}

	w := output.NewFileWriter(path)
	if err := w.Write(data); err != nil {
		return nil, &Error{FilterID: IDWriteAsset, Err: err}
	}

	// Confirm the write landed and report the size.
	info, err := os.Stat(path)
	if err != nil {
		return nil, Errorf(IDWriteAsset, "output file was not created: %v", err)
	}

	fctx.Sink.Emit(SeverityInfo, IDWriteAsset,
		fmt.Sprintf("wrote %s (%d bytes, %d objects)", path, info.Size(), g.Len()))

	return g, nil
}

// applySuffix inserts a suffix between a file name and its extension:
// scene.yaml + "out" becomes scene_out.yaml.
func applySuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	return base + "_" + suffix + ext
}
