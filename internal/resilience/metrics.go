package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker collectors, labelled by target (for example "fx-feed").
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "importa",
		Name:      "breaker_state",
		Help:      "Breaker position per target: 0 closed, 1 open, 2 half-open.",
	}, []string{"target"})
	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "importa",
		Name:      "breaker_transition_total",
		Help:      "Breaker state changes per target.",
	}, []string{"target", "from", "to"})
	BreakerOpenedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "importa",
		Name:      "breaker_open_total",
		Help:      "Times a breaker opened per target.",
	}, []string{"target"})
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
