package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "layer_map"

// Metrics holds the Prometheus counters, histograms, and gauges for rendering
// and the Kafka render pipeline.
type Metrics struct {
	// Render metrics.
	Renders        prometheus.Counter
	RenderFailures *prometheus.CounterVec // labels: kind={empty_result,missing_required_field,no_valid_rows,map_surface_unavailable}
	RowsReceived   prometheus.Counter
	RowsDropped    prometheus.Counter
	LayerPoints    *prometheus.GaugeVec // labels: category
	LayerToggles   *prometheus.CounterVec // labels: action={show,hide}
	LayerRecolors  prometheus.Counter

	// Pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesSkipped         prometheus.Counter
	SnapshotsProduced       prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Renders,
		m.RenderFailures,
		m.RowsReceived,
		m.RowsDropped,
		m.LayerPoints,
		m.LayerToggles,
		m.LayerRecolors,
		m.MessagesConsumed,
		m.MessagesSkipped,
		m.SnapshotsProduced,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Successful render cycles.",
		}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Render cycles that ended with an inline error, by kind.",
		}, []string{"kind"}),
		RowsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_received_total",
			Help:      "Result rows handed to the classifier.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows excluded for unparseable or out-of-range coordinates.",
		}),
		LayerPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layer_points",
			Help:      "Points in each category after the latest render.",
		}, []string{"category"}),
		LayerToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_toggles_total",
			Help:      "Layer visibility changes by action.",
		}, []string{"action"}),
		LayerRecolors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_recolors_total",
			Help:      "Layer color changes.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Result-set messages read from the source topic.",
		}),
		MessagesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_skipped_total",
			Help:      "Messages that produced no snapshot because they failed to decode or render.",
		}),
		SnapshotsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_produced_total",
			Help:      "Layer snapshots written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the render pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-render-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
