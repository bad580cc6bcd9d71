// Package metrics holds the process-wide Prometheus collectors, exposed by
// the gateway on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_readings_produced_total",
		Help: "Telemetry readings written to the store, per probe.",
	}, []string{"probe_id"})

	ReadingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_reading_errors_total",
		Help: "Per-probe telemetry tick failures.",
	}, []string{"probe_id"})

	CommandsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldops_commands_submitted_total",
		Help: "Commands admitted to the queue.",
	})

	CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_commands_executed_total",
		Help: "Commands reaching a terminal state, by status.",
	}, []string{"status"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldops_broadcast_dropped_total",
		Help: "Events dropped because a subscriber buffer was full.",
	})

	MirrorWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_mirror_writes_total",
		Help: "Reading mirror writes to InfluxDB, by outcome.",
	}, []string{"outcome"})
)
