// Package metrics holds the Prometheus collectors for the contract pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline counts extraction outcomes, model attempts and JSON recovery stages.
type Pipeline struct {
	Extractions   *prometheus.CounterVec
	ModelAttempts *prometheus.CounterVec
	JSONRecovery  *prometheus.CounterVec
	Duration      prometheus.Histogram
}

// NewPipeline creates the collectors and registers them with reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contract_extractions_total",
				Help: "Pipeline invocations by outcome (success or error kind).",
			},
			[]string{"outcome"},
		),
		ModelAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contract_model_attempts_total",
				Help: "Model calls by result (ok or error kind).",
			},
			[]string{"result"},
		),
		JSONRecovery: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contract_json_recovery_total",
				Help: "Model responses by the JSON recovery stage that produced the object.",
			},
			[]string{"stage"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contract_extraction_duration_seconds",
			Help:    "Wall-clock duration of a pipeline invocation.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}

	for _, c := range []prometheus.Collector{p.Extractions, p.ModelAttempts, p.JSONRecovery, p.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewNop returns collectors registered nowhere, for the CLI and tests.
func NewNop() *Pipeline {
	p, _ := NewPipeline(prometheus.NewRegistry())
	return p
}
