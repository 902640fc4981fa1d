// Package tabulate flattens bibliographic items into rows: field aliasing,
// collection path resolution, per-item normalization, cross-product row
// expansion and header collection, driven against the host's cursors.
package tabulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/bibtable/internal/metrics"
	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

// RowWriter serializes rows to the output sink. WriteHeader is called once
// before any WriteRow; Close finishes the document but does not close the
// underlying sink. The values slice is reused between WriteRow calls.
type RowWriter interface {
	WriteHeader(headers []string) error
	WriteRow(values []any) error
	Close() error
}

// Summary describes a finished export run.
type Summary struct {
	RunID       string
	Preset      string
	Format      string
	Library     string
	Collections int
	Items       int
	Skipped     int
	Rows        int
	Columns     []string
	StartedAt   time.Time
	Duration    time.Duration
}

// Exporter runs the flattening pipeline for one configuration.
type Exporter struct {
	cfg     Config
	dates   zotero.DateParser
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithMetrics records run counters in m.
func WithMetrics(m *metrics.Metrics) ExporterOption {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates an exporter for cfg.
func NewExporter(cfg Config, dates zotero.DateParser, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		cfg:    cfg,
		dates:  dates,
		logger: slog.Default().With("component", "tabulate.export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export materializes the collection hierarchy, normalizes and expands every
// item, then writes the header row and all data rows to w in order.
func (e *Exporter) Export(ctx context.Context, items zotero.ItemCursor, collections zotero.CollectionCursor, w RowWriter) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		Preset:    e.cfg.Preset,
		Format:    e.cfg.Format,
		Library:   e.cfg.LibraryName,
		StartedAt: time.Now(),
	}
	logger := e.logger.With("run_id", summary.RunID)
	logger.Info("Starting export", "preset", e.cfg.Preset, "format", e.cfg.Format)

	var all []zotero.Collection
	for {
		c, err := collections.NextCollection()
		if err != nil {
			return nil, fmt.Errorf("failed to read collections: %w", err)
		}
		if c == nil {
			break
		}
		all = append(all, *c)
	}
	resolver := NewResolver(all)
	summary.Collections = len(all)
	e.metrics.CollectionsLoaded(len(all))
	logger.Debug("Collections loaded", "count", len(all))

	normalizer := NewNormalizer(e.cfg, resolver, e.dates)
	headers := NewHeaders()
	var rows []Row

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item, err := items.NextItem()
		if err != nil {
			return nil, fmt.Errorf("failed to read item %d: %w", summary.Items+summary.Skipped+1, err)
		}
		if item == nil {
			break
		}

		normalized, ok := normalizer.Normalize(item)
		if !ok {
			summary.Skipped++
			e.metrics.ItemSkipped()
			logger.Debug("Skipping item", "itemType", item.Type(), "key", item.String("key"))
			continue
		}

		expanded := Expand(e.cfg, normalized)
		for _, r := range expanded {
			headers.Add(r)
		}
		rows = append(rows, expanded...)
		summary.Items++
		e.metrics.ItemExported()

		if summary.Items%1000 == 0 {
			logger.Debug("Normalizing items", "items", summary.Items, "rows", len(rows))
		}
	}

	summary.Columns = headers.Sorted()

	if err := w.WriteHeader(summary.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	values := make([]any, len(summary.Columns))
	for i, row := range rows {
		for j, column := range summary.Columns {
			values[j] = row[column]
		}
		if err := w.WriteRow(values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish export: %w", err)
	}

	summary.Rows = len(rows)
	summary.Duration = time.Since(summary.StartedAt)
	e.metrics.RowsWritten(len(rows))
	e.metrics.ObserveDuration(summary.Duration)

	logger.Info("Export finished",
		"items", summary.Items,
		"skipped", summary.Skipped,
		"rows", summary.Rows,
		"columns", len(summary.Columns),
		"duration", summary.Duration)

	return summary, nil
}
