package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every failtrack collector. It is kept apart from the
// default registry so textfile exports carry only our series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	LinesRead = factory.NewCounter(prometheus.CounterOpts{
		Name: "failtrack_lines_read_total",
		Help: "Log lines consumed from input sources.",
	})

	EventsExtracted = factory.NewCounter(prometheus.CounterOpts{
		Name: "failtrack_failed_login_events_total",
		Help: "Failed-login events extracted from log lines.",
	})

	LinesRejected = factory.NewCounter(prometheus.CounterOpts{
		Name: "failtrack_lines_rejected_total",
		Help: "Lines containing the failure marker that did not yield an event.",
	})

	Runs = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "failtrack_runs_total",
		Help: "Analysis runs by outcome.",
	}, []string{"outcome"})

	Artifacts = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "failtrack_artifacts_total",
		Help: "Report artifacts by kind and status.",
	}, []string{"kind", "status"})

	DistinctAddresses = factory.NewGauge(prometheus.GaugeOpts{
		Name: "failtrack_distinct_addresses",
		Help: "Distinct source addresses in the last run.",
	})

	SuspiciousAddresses = factory.NewGauge(prometheus.GaugeOpts{
		Name: "failtrack_suspicious_addresses",
		Help: "Addresses above the threshold in the last run.",
	})
)

// Outcome labels for Runs
const (
	OutcomeOK          = "ok"
	OutcomeNoData      = "no_data"
	OutcomeUnavailable = "input_unavailable"
	OutcomeFailed      = "failed"
)

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// WriteTextfile atomically writes the registry for node_exporter's textfile
// collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
