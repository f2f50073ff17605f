package fragment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLabel = "outcome"
	anomalyLabel = "anomaly"
)

var (
	fragmentExplosions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fragment_explosions_total",
		Help: "The number of explosions applied to bodies, by outcome.",
	}, []string{outcomeLabel})

	fragmentNodesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fragment_nodes_removed_total",
		Help: "The number of tree nodes detached by explosions.",
	})

	fragmentAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fragment_anomalies_total",
		Help: "The number of broken tree states found and repaired.",
	}, []string{anomalyLabel})

	fragmentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "fragment_explode_seconds",
		Help: "The time to explode one body.",
	})
)

func instrumentExplosion(outcome Outcome, removed int, start time.Time) {
	fragmentExplosions.
		With(prometheus.Labels{outcomeLabel: outcome.String()}).
		Inc()
	fragmentNodesRemoved.Add(float64(removed))
	fragmentLatency.Observe(time.Since(start).Seconds())
}

func instrumentAnomaly(kind string) {
	fragmentAnomalies.
		With(prometheus.Labels{anomalyLabel: kind}).
		Inc()
}
