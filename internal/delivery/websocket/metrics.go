package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sergis_rpc_calls_total",
		Help: "Total number of storage RPC calls.",
	}, []string{"method", "code"})

	rpcCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sergis_rpc_call_duration_seconds",
		Help:    "Duration of storage RPC calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sergis_rpc_active_connections",
		Help: "Number of open RPC websocket connections.",
	})
)
