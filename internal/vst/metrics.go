package vst

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const reasonLabel = "reason"

var (
	vstNodesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vst_nodes_built_total",
		Help: "The number of subdivision tree nodes created.",
	})

	vstSplitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vst_split_failures_total",
		Help: "The number of nodes left unsplit during construction.",
	}, []string{reasonLabel})

	vstBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "vst_build_seconds",
		Help: "The time to build a subdivision tree.",
	})
)

func instrumentNodeBuilt() {
	vstNodesBuilt.Inc()
}

func instrumentSplitFailure(reason string) {
	vstSplitFailures.
		With(prometheus.Labels{reasonLabel: reason}).
		Inc()
}
