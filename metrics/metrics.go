// Package metrics provides Prometheus metrics for validation calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/zskema"
)

// Collector holds the validation metrics. It implements zskema.Observer, so
// it can be set as Config.Observer directly.
type Collector struct {
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	IssuesTotal        *prometheus.CounterVec
	DocumentsInFlight  prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector { return NewWithRegistry(prometheus.DefaultRegisterer) }

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zskema",
				Name:      "validations_total",
				Help:      "Total number of validation calls by outcome",
			},
			[]string{"schema", "outcome"},
		),
		ValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "zskema",
				Name:      "validation_duration_seconds",
				Help:      "Validation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"schema"},
		),
		IssuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zskema",
				Name:      "issues_total",
				Help:      "Total number of reported issues by code",
			},
			[]string{"schema", "code"},
		),
		DocumentsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "zskema",
				Name:      "documents_in_flight",
				Help:      "Number of documents currently being validated",
			},
		),
	}
}

// ObserveValidation records one validation call.
func (c *Collector) ObserveValidation(name string, issues zskema.Issues, elapsed time.Duration) {
	name = SchemaLabel(name)
	outcome := "valid"
	if len(issues) > 0 {
		outcome = "invalid"
	}
	c.ValidationsTotal.WithLabelValues(name, outcome).Inc()
	c.ValidationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	for _, it := range issues {
		c.IssuesTotal.WithLabelValues(name, it.Code).Inc()
	}
}

// SchemaLabel keeps the schema label bounded.
func SchemaLabel(name string) string {
	if name == "" {
		return "anonymous"
	}
	if len(name) > 50 {
		return name[:50] + "..."
	}
	return name
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

var _ zskema.Observer = (*Collector)(nil)
