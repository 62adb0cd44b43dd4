package sync

import (
	"github.com/prometheus/client_golang/prometheus"
)

var queueLength = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "sync_queue_length",
		Help: "Number of locally applied mutations waiting for remote acknowledgment.",
	},
)

var onlineState = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "sync_online",
		Help: "Whether the device currently has working internet egress (1) or not (0).",
	},
)

var metrics = []prometheus.Collector{
	queueLength,
	onlineState,
}

// RegisterMetrics registers the engine's Prometheus metrics with the
// default registry.
func RegisterMetrics() error {
	for _, c := range metrics {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// UnregisterMetrics unregisters the engine's Prometheus metrics.
//
// This is needed to cleanly exit.
func UnregisterMetrics() bool {
	for _, c := range metrics {
		if ok := prometheus.Unregister(c); !ok {
			return false
		}
	}

	return true
}

func recordOnline(online bool) {
	if online {
		onlineState.Set(1)
		return
	}

	onlineState.Set(0)
}
