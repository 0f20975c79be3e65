package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "flatfileserver"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelKind    = "kind"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// LoadsCompletedCounter count the number of successful loads
	LoadsCompletedCounter = newCounterVec(
		"loads_completed_count",
		"Number of loads that were successfully completed",
	)
	// LoadsFailedCounter count the number of loads that had an error
	LoadsFailedCounter = newCounterVec(
		"loads_failed_count",
		"Number of loads that failed due to an error",
	)
	// LoadDuration observe the duration of each backend load
	LoadDuration = newSummaryVec(
		"load_duration_seconds",
		"Duration in seconds for each backend load",
	)
	// ChangedDirectoriesCounter count the directories reported by change polls
	ChangedDirectoriesCounter = newCounterVec(
		"changed_directories_count",
		"Number of changed directories reported by change polls",
	)
	// ChangesDuration observe the duration of each change poll
	ChangesDuration = newSummaryVec(
		"changes_duration_seconds",
		"Duration in seconds for each change poll",
	)
	// ModelsGauge number of models in the index
	ModelsGauge = newGaugeVec(
		"models_total",
		"Number of models in the site index",
		metricLabelKind,
	)
	// LookupCounter count lookups per kind and outcome
	LookupCounter = newCounterVec(
		"lookup_count",
		"Number of site lookups",
		metricLabelKind, metricLabelStatus,
	)
	// ServiceRequestCounter count the number of requests for each handler
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each handler
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to refresh the site, look up and marshal the response",
		metricLabelHandler, metricLabelStatus,
	)
	// SnapshotPersistFailedCounter count the number of failed attempts to persist a snapshot
	SnapshotPersistFailedCounter = newCounterVec(
		"snapshot_persist_failed_count",
		"Number of failures to store a site snapshot",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
