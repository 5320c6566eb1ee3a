package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airgalon"

type OrderMetrics struct {
	Transitions    *prometheus.CounterVec
	ClaimConflicts prometheus.Counter
	Payments       *prometheus.CounterVec
	Checkouts      *prometheus.CounterVec
}

// NewOrderMetrics registers the collectors on reg; nil means the default
// registry.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &OrderMetrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Accepted order status transitions.",
		}, []string{"from", "to"}),
		ClaimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "claim_conflicts_total",
			Help:      "Claims lost to another driver.",
		}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "notifications_total",
			Help:      "Payment notifications by outcome.",
		}, []string{"outcome"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "requests_total",
			Help:      "Checkouts by payment method.",
		}, []string{"payment_method"}),
	}

	reg.MustRegister(m.Transitions, m.ClaimConflicts, m.Payments, m.Checkouts)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
