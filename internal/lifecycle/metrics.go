package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ideasCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ideavault_ideas_captured_total",
		Help: "Ideas successfully captured.",
	})

	ideasEnriched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ideavault_ideas_enriched_total",
		Help: "Ideas successfully enriched.",
	})

	pipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ideavault_pipeline_errors_total",
		Help: "Pipeline failures by stage.",
	}, []string{"stage"})

	costRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ideavault_cost_usd_total",
		Help: "Estimated upstream spend in USD by kind.",
	}, []string{"kind"})
)
