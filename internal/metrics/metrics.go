// Package metrics implements the Metrics Surface (spec §4.G): the
// counters and gauges the core updates as a side effect of its work,
// exposed to the outside world over the text exposition format via
// promhttp.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Action labels used with ActionsOverRecords.
const (
	ActionInvalidate = "invalidate"
	ActionRepopulate = "repopulate"
)

// Metrics holds every Prometheus collector the core updates directly.
type Metrics struct {
	ActionsOverRecords        *prometheus.CounterVec
	FailedCommandsToExecute   *prometheus.CounterVec
	FailedRecordsManipulation *prometheus.CounterVec
	RecordsForPurgingSize     prometheus.Gauge
}

// New creates and registers the Metrics Surface against reg. Passing a
// fresh *prometheus.Registry (rather than the global default) keeps tests
// hermetic.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActionsOverRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actions_over_records",
			Help: "Count of invalidate/repopulate commands issued per record type.",
		}, []string{"action", "record_type"}),
		FailedCommandsToExecute: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "failed_commands_to_execute",
			Help: "Count of subprocess invocations that returned a non-zero exit code.",
		}, []string{"command", "exit_code"}),
		FailedRecordsManipulation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "failed_records_manipulation",
			Help: "Count of subprocess invocations that could not be spawned or awaited.",
		}, []string{"command"}),
		RecordsForPurgingSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "records_for_purging_size",
			Help: "Size of the Answer Index heap, set after every scheduler iteration.",
		}),
	}
	reg.MustRegister(m.ActionsOverRecords, m.FailedCommandsToExecute, m.FailedRecordsManipulation, m.RecordsForPurgingSize)
	return m
}

// RecordAction increments the action counter for one invalidate/repopulate
// command issued for recordType.
func (m *Metrics) RecordAction(action, recordType string) {
	m.ActionsOverRecords.WithLabelValues(action, recordType).Inc()
}

// RecordFailedCommand increments the failed-exit-code counter.
func (m *Metrics) RecordFailedCommand(command string, exitCode int) {
	m.FailedCommandsToExecute.WithLabelValues(command, strconv.Itoa(exitCode)).Inc()
}

// RecordFailedManipulation increments the spawn/wait-failure counter.
func (m *Metrics) RecordFailedManipulation(command string) {
	m.FailedRecordsManipulation.WithLabelValues(command).Inc()
}

// SetRecordsForPurgingSize sets the post-cycle heap size gauge.
func (m *Metrics) SetRecordsForPurgingSize(n int) {
	m.RecordsForPurgingSize.Set(float64(n))
}
