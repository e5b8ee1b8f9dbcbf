package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReconciliationMetrics tracks order line reconciliation outcomes, most
// importantly how often a mid-sequence stock conflict forces compensation.
type ReconciliationMetrics struct {
	applied       *prometheus.CounterVec
	conflicts     prometheus.Counter
	compensations prometheus.Counter
}

// NewReconciliationMetrics registers the reconciliation metrics on the
// provided registerer.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_reconciliation_applied_total",
		Help: "Line item operations applied, by operation.",
	}, []string{"operation"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_reconciliation_conflicts_total",
		Help: "Reconciliations aborted by an insufficient-stock conflict.",
	})
	compensations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_reconciliation_compensations_total",
		Help: "Compensation passes run to undo partial inventory decrements.",
	})
	reg.MustRegister(applied, conflicts, compensations)
	return &ReconciliationMetrics{
		applied:       applied,
		conflicts:     conflicts,
		compensations: compensations,
	}
}

// IncApplied increments the applied counter for the named operation.
func (r *ReconciliationMetrics) IncApplied(operation string) {
	if r == nil || r.applied == nil {
		return
	}
	r.applied.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncConflict increments the conflict counter.
func (r *ReconciliationMetrics) IncConflict() {
	if r == nil || r.conflicts == nil {
		return
	}
	r.conflicts.Inc()
}

// IncCompensation increments the compensation counter.
func (r *ReconciliationMetrics) IncCompensation() {
	if r == nil || r.compensations == nil {
		return
	}
	r.compensations.Inc()
}
