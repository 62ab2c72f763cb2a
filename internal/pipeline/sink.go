package pipeline

import (
	"log/slog"

	"github.com/hupe1980/assetpipe/internal/filter"
)

// SlogSink forwards sink entries to a structured logger. Emit never blocks
// beyond the handler's own write.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink backed by logger; nil falls back to
// slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogSink{logger: logger}
}

// Emit implements filter.Sink.
func (s *SlogSink) Emit(sev filter.Severity, filterID, message string) {
	attrs := make([]any, 0, 2)
	if filterID != "" {
		attrs = append(attrs, slog.String("filter", filterID))
	}

	switch sev {
	case filter.SeverityWarning:
		s.logger.Warn(message, attrs...)
	case filter.SeverityError:
		s.logger.Error(message, attrs...)
	default:
		s.logger.Info(message, attrs...)
	}
}

// CollectorSink buffers entries in memory; used by tests and the library
// facade to inspect log output after a run.
type CollectorSink struct {
	Entries []LogEntry
}

// Emit implements filter.Sink.
func (c *CollectorSink) Emit(sev filter.Severity, filterID, message string) {
	c.Entries = append(c.Entries, LogEntry{Severity: sev, FilterID: filterID, Message: message})
}

// TeeSink fans entries out to multiple sinks.
type TeeSink []filter.Sink

// Emit implements filter.Sink.
func (t TeeSink) Emit(sev filter.Severity, filterID, message string) {
	for _, s := range t {
		s.Emit(sev, filterID, message)
	}
}
