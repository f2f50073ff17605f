package heal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLabel = "outcome"

	outcomeHealed    = "healed"
	outcomeUnchanged = "unchanged"
	outcomeAbandoned = "abandoned"
	outcomeFailed    = "failed"
)

var (
	heals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heal_requests_total",
		Help: "The number of heal requests, by outcome.",
	}, []string{outcomeLabel})

	healGathered = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heal_gathered_bodies",
		Help:    "The number of bodies merged by one heal.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	healLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "heal_seconds",
		Help: "The time from a heal request to its resolution, animation included.",
	})
)

func instrumentHeal(outcome string, gathered int, start time.Time) {
	heals.
		With(prometheus.Labels{outcomeLabel: outcome}).
		Inc()
	if outcome == outcomeHealed {
		healGathered.Observe(float64(gathered))
	}
	healLatency.Observe(time.Since(start).Seconds())
}
