// Package metrics records per-run export counters in a private Prometheus
// registry that can be written out as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bibtable"

// Metrics tracks one export run.
//
// Metrics:
//   - bibtable_export_items_total: items read from the host, by outcome
//   - bibtable_export_rows_total: rows written to the sink
//   - bibtable_export_collections: collections loaded for path resolution
//   - bibtable_export_duration_seconds: wall time of the last run
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	items       *prometheus.CounterVec
	rows        prometheus.Counter
	collections prometheus.Gauge
	duration    prometheus.Gauge
}

// New creates the export metrics in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "items_total",
				Help:      "Items read from the library, by outcome",
			},
			[]string{"outcome"},
		),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Rows written to the export",
		}),
		collections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "collections",
			Help:      "Collections loaded for path resolution",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Wall time of the export run",
		}),
	}

	m.registry.MustRegister(m.items, m.rows, m.collections, m.duration)
	return m
}

// ItemExported counts an item that produced rows.
func (m *Metrics) ItemExported() {
	if m == nil {
		return
	}
	m.items.WithLabelValues("exported").Inc()
}

// ItemSkipped counts an item that produced no rows.
func (m *Metrics) ItemSkipped() {
	if m == nil {
		return
	}
	m.items.WithLabelValues("skipped").Inc()
}

// RowsWritten adds n written rows.
func (m *Metrics) RowsWritten(n int) {
	if m == nil {
		return
	}
	m.rows.Add(float64(n))
}

// CollectionsLoaded sets the number of collections in the resolver.
func (m *Metrics) CollectionsLoaded(n int) {
	if m == nil {
		return
	}
	m.collections.Set(float64(n))
}

// ObserveDuration records the run's wall time.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Set(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format,
// atomically replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
