package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Runs              prometheus.Counter
	MessagesFetched   prometheus.Counter
	RecordsParsed     prometheus.Counter
	ParseFailures     prometheus.Counter
	RowsAppended      prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	ProcessingErrors  prometheus.Counter
	RunDuration       prometheus.Histogram
	LastRunTimestamp  prometheus.Gauge
}

// NewMetrics creates metrics registered on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics registered on the given registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_runs_total",
			Help: "Total number of harvest cycles started",
		}),
		MessagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_messages_fetched_total",
			Help: "Total number of messages fetched from the mailbox",
		}),
		RecordsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_records_parsed_total",
			Help: "Total number of messages that yielded a usable guest record",
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_parse_failures_total",
			Help: "Total number of messages no strategy could parse",
		}),
		RowsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_rows_appended_total",
			Help: "Total number of rows appended to the row store",
		}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_duplicates_skipped_total",
			Help: "Total number of records suppressed as duplicates",
		}),
		ProcessingErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_harvester_processing_errors_total",
			Help: "Total number of unexpected per-message and per-run faults",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rsvp_harvester_run_duration_seconds",
			Help:    "Time spent per harvest cycle",
			Buckets: prometheus.DefBuckets,
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rsvp_harvester_last_run_timestamp_seconds",
			Help: "Unix time of the last completed harvest cycle",
		}),
	}
}
