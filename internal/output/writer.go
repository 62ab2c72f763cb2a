// Package output provides the destinations serialized asset graphs are
// written to: a stream (stdout) or a file with parent-directory creation.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer receives one serialized asset graph per call.
type Writer interface {
	Write(data []byte) error
}

// StdoutWriter streams serialized assets to a writer, stdout by default.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a stream writer. A nil w means os.Stdout.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w}
}

// Write implements Writer.
func (sw *StdoutWriter) Write(data []byte) error {
	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter writes serialized assets to a path, creating missing parent
// directories. Overwriting an existing file is allowed but logged.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) { fw.perm = perm }
}

// WithLogger sets the logger used for overwrite warnings.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) { fw.logger = logger }
}

// NewFileWriter creates a file writer for path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{path: path, perm: 0o644, logger: slog.Default()}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write implements Writer.
func (fw *FileWriter) Write(data []byte) error {
	if dir := filepath.Dir(fw.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(fw.path); err == nil {
		fw.logger.Warn("overwriting existing file", slog.String("path", fw.path))
	}

	if err := os.WriteFile(fw.path, data, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	return nil
}

// Path returns the destination path.
func (fw *FileWriter) Path() string {
	return fw.path
}
