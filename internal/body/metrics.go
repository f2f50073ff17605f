package body

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const kindLabel = "kind"

var (
	bodyActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "body_active",
		Help: "The number of bodies currently in the simulation.",
	}, []string{kindLabel})

	bodySpawned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "body_spawned_total",
		Help: "The total number of bodies created.",
	}, []string{kindLabel})
)

func instrumentSpawn(kind Kind) {
	labels := prometheus.Labels{kindLabel: string(kind)}
	bodySpawned.With(labels).Inc()
	bodyActive.With(labels).Inc()
}

func instrumentDeactivate(kind Kind) {
	bodyActive.
		With(prometheus.Labels{kindLabel: string(kind)}).
		Dec()
}
