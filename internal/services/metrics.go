package services

import "github.com/prometheus/client_golang/prometheus"

// Guard outcome label values.
const (
	outcomeAllowed     = "allowed"
	outcomeUndone      = "undone"
	outcomeBlocked     = "blocked"
	outcomeAlreadyDone = "already_done"
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
)

// guardDecisions counts guard decisions by action and outcome. The action
// label is "invalid" for requests whose action could not be parsed so that
// cardinality stays bounded.
var guardDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "guard_decisions_total",
		Help: "Interaction guard decisions by action and outcome.",
	},
	[]string{"action", "outcome"},
)

func init() {
	prometheus.MustRegister(guardDecisions)
}

func recordDecision(action, outcome string) {
	guardDecisions.WithLabelValues(action, outcome).Inc()
}
