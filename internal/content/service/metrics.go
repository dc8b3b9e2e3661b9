package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels recorded on webforge_content_operations_total.
const (
	resultOK              = "ok"
	resultValidation      = "validation_error"
	resultNotFound        = "not_found"
	resultUnauthenticated = "unauthenticated"
	resultForbidden       = "forbidden"
	resultConflict        = "conflict"
	resultStoreError      = "store_error"
)

// Metrics holds the content service collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the content service collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webforge",
			Subsystem: "content",
			Name:      "operations_total",
			Help:      "Content service operations by entity, operation and result.",
		}, []string{"entity", "operation", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webforge",
			Subsystem: "content",
			Name:      "operation_duration_seconds",
			Help:      "Content service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "operation"}),
	}
}

func (m *Metrics) observe(entity, op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(entity, op, result).Inc()
	m.duration.WithLabelValues(entity, op).Observe(seconds)
}
