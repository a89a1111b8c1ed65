// Package metrics exposes Prometheus collectors for the dialog engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	turns                *prometheus.CounterVec
	confidence           *prometheus.HistogramVec
	learningWrites       *prometheus.CounterVec
	collaboratorFailures *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hrassist_turns_total",
			Help: "Answered turns by match source and confidence tier",
		}, []string{"source", "tier"}),
		confidence: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrassist_match_confidence",
			Help:    "Intent match confidence per turn",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}, []string{"source"}),
		learningWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hrassist_learning_writes_total",
			Help: "Learning store upserts by outcome",
		}, []string{"ok"}),
		collaboratorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hrassist_collaborator_failures_total",
			Help: "Failed calls to optional collaborators",
		}, []string{"collaborator"}),
	}
}

func (m *Metrics) ObserveTurn(source, tier string, confidence float64) {
	m.turns.WithLabelValues(source, tier).Inc()
	m.confidence.WithLabelValues(source).Observe(confidence)
}

func (m *Metrics) LearningWrite(ok bool) {
	m.learningWrites.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *Metrics) CollaboratorFailure(name string) {
	m.collaboratorFailures.WithLabelValues(name).Inc()
}
