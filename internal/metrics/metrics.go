// Package metrics exports Prometheus counters for the wallet core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "localwallet"

var (
	// LoginAttempts counts password verifications by result
	// ("ok", "invalid", "locked").
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Password verification attempts by result.",
		},
		[]string{"result"},
	)

	// VaultOperations counts encrypted key saves and loads by result.
	VaultOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vault_operations_total",
			Help:      "Encrypted private key operations by kind and result.",
		},
		[]string{"op", "result"},
	)

	// BalanceFetches counts completed balance queries by network and result.
	BalanceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_fetches_total",
			Help:      "Completed balance queries by network and result.",
		},
		[]string{"network", "result"},
	)

	// StaleResults counts balance results discarded because the wallet
	// changed while the query was in flight.
	StaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_stale_results_total",
			Help:      "Balance results discarded after logout, clear or switch.",
		},
	)
)

// Result maps an error to the "ok"/"error" label used by the counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
