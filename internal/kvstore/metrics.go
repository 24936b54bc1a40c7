package kvstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_store_loads_total",
		Help: "Hydrations from the durable backend, per key.",
	}, []string{"key"})

	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_store_saves_total",
		Help: "Write-throughs to the durable backend, per key.",
	}, []string{"key"})

	applied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_store_external_changes_total",
		Help: "Change events from other contexts applied wholesale, per key.",
	}, []string{"key"})

	decodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_store_decode_failures_total",
		Help: "Stored values or change events dropped as malformed, per key.",
	}, []string{"key"})
)
