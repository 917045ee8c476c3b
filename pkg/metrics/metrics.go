package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions counts access resolutions and their outcome (granted|denied|error).
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praxis_access_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"resource", "result"},
	)

	// DecisionCacheLookups counts decision cache reads by result (hit|miss|error).
	DecisionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praxis_decision_cache_lookups_total",
			Help: "Total number of decision cache lookups",
		},
		[]string{"result"},
	)

	// GrantMutations counts grant/revoke operations by scope.
	GrantMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "praxis_grant_mutations_total",
			Help: "Total number of access grant mutations",
		},
		[]string{"operation", "scope"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "praxis_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
