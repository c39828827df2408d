package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "cybdates"

type Metrics struct {
	Ingestions        *prometheus.CounterVec
	RowsProcessed     prometheus.Counter
	RowsSkipped       prometheus.Counter
	IngestionDuration prometheus.Histogram
	RouteQueries      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ingestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingestions_total",
			Help:      "The total number of schedule uploads by result",
		}, []string{"result"}),
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_processed_total",
			Help:      "The total number of schedule data rows read",
		}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_skipped_total",
			Help:      "The total number of schedule data rows dropped as malformed",
		}),
		IngestionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Time taken to ingest an uploaded schedule",
			Buckets:   prometheus.DefBuckets,
		}),
		RouteQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "route_queries_total",
			Help:      "The total number of route lookups by result",
		}, []string{"result"}),
	}
}
