// Package metrics publishes workflow and notification counters through the
// prometheus client. A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blood_donation"

type Recorder struct {
	operations    *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	conflicts     *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	notifications prometheus.Counter
	stockUnits    *prometheus.CounterVec
}

// New builds a recorder and registers its collectors on reg. Tests pass a
// fresh prometheus.NewRegistry(); main passes the per-run registry it pushes
// or serves.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_operations_total",
			Help:      "Workflow operations by name and result.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_operation_duration_seconds",
			Help:      "Workflow operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_conflicts_total",
			Help:      "Conflict errors by operation and constraint.",
		}, []string{"operation", "constraint"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blood_request_transitions_total",
			Help:      "Blood request status changes.",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Notification log rows written.",
		}),
		stockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blood_stock_units_total",
			Help:      "Units moved out of stock by fulfillment, by blood group.",
		}, []string{"blood_group"}),
	}
	if reg != nil {
		reg.MustRegister(r.operations, r.durations, r.conflicts, r.transitions, r.notifications, r.stockUnits)
	}
	return r
}

// Observe records the outcome and latency of one workflow operation.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if r == nil || operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.durations.WithLabelValues(operation).Observe(d.Seconds())
}

func (r *Recorder) Conflict(operation, constraint string) {
	if r == nil {
		return
	}
	if constraint == "" {
		constraint = "unknown"
	}
	r.conflicts.WithLabelValues(operation, constraint).Inc()
}

func (r *Recorder) Transition(from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *Recorder) NotificationEmitted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.notifications.Add(float64(n))
}

func (r *Recorder) StockConsumed(group string, units int) {
	if r == nil || units <= 0 {
		return
	}
	r.stockUnits.WithLabelValues(group).Add(float64(units))
}
