// Package metrics holds the Prometheus collectors the dashboard exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Loads        *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	Renders      *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by result.",
		}, []string{"result"}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "explorer",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent downloading and parsing the dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 4, 8),
		}),
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "explorer",
			Name:      "renders_total",
			Help:      "Render passes by final state.",
		}, []string{"state"}),
	}
}
