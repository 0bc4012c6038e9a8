package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var incidentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "honeypot_incident_duration_seconds",
	Help:    "Wall time from trap message to published log record",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
}, []string{"outcome"})

var evidenceMatches = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "honeypot_evidence_matches",
	Help:    "Near-duplicate messages found per collection",
	Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
})

// ObserveIncident records how long an incident took, labelled by outcome.
func ObserveIncident(outcome string, start time.Time) {
	incidentDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func ObserveEvidence(matches int) {
	evidenceMatches.Observe(float64(matches))
}
