package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RebuildsTotal         *prometheus.CounterVec
	RebuildDuration       prometheus.Histogram
	ReconciliationRecords *prometheus.GaugeVec
	QueriesTotal          *prometheus.CounterVec
	ErrorsCount           *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "The total number of reconciliation rebuilds by outcome",
		}, []string{"status"}),
		RebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Time taken to rebuild the reconciliation table",
			Buckets:   prometheus.DefBuckets,
		}),
		ReconciliationRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconciliation_records",
			Help:      "Records produced by the last completed rebuild",
		}, []string{"kind"}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "The total number of reconciliation queries by filter bucket",
		}, []string{"bucket"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
