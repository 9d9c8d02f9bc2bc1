package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "yk_dns_janitor"

	metricAPI = "api_request"

	DecisionLabel = "decision"
	ResultLabel   = "result"

	ProbeResultAlive = "alive"
	ProbeResultDead  = "dead"
)

// Registry holds every janitor metric. It is what gets pushed at the end of a run.
var Registry = prometheus.NewRegistry()

var (
	Records = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "records_total",
			Help:      "Address records processed, by reconciliation decision",
		}, []string{DecisionLabel})

	DeleteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "record_delete_errors_total",
			Help:      "Record deletions that failed",
		})

	Probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "probes_total",
			Help:      "Liveness probes issued, by result",
		}, []string{ResultLabel})

	InventoryAddresses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "inventory_addresses",
			Help:      "Distinct server addresses found in the inventory",
		})

	APIRequest = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricAPI,
			Name:      "total",
			Help:      "Total number of provider API calls",
		}, []string{"provider", "method"})

	APIRequestError = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricAPI,
			Name:      "errors_total",
			Help:      "Total number of errors for a provider API call",
		}, []string{"provider", "method"})

	LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last reconciliation run finished",
		})
)

func init() {
	Registry.MustRegister(Records)
	Registry.MustRegister(DeleteErrors)
	Registry.MustRegister(Probes)
	Registry.MustRegister(InventoryAddresses)

	Registry.MustRegister(APIRequest)
	Registry.MustRegister(APIRequestError)
	Registry.MustRegister(LastRun)
}
