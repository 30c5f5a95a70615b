package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Payment reconciliation outcomes, labeled by result. Signature failures and
// out-of-stock confirmations are the two alerts operators page on.
var (
	ReconciliationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashio",
		Subsystem: "payments",
		Name:      "reconciliation_total",
		Help:      "Gateway return callbacks by reconciliation outcome.",
	}, []string{"outcome"})

	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fashio",
		Subsystem: "payments",
		Name:      "signature_failures_total",
		Help:      "Callbacks rejected because the secure hash did not verify.",
	})
)

// Outcome label values for ReconciliationTotal.
const (
	OutcomePaid       = "paid"
	OutcomeReplay     = "replay"
	OutcomeDeclined   = "declined"
	OutcomeOutOfStock = "out_of_stock"
	OutcomeError      = "error"
)
