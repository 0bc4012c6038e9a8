package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var IncidentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "honeypot_incidents_total",
	Help: "Trap-channel messages by how the engine handled them",
}, []string{"outcome"})

var ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "honeypot_actions_total",
	Help: "Punitive actions attempted, by action and result",
}, []string{"action", "result"})

var MessagesErased = promauto.NewCounter(prometheus.CounterOpts{
	Name: "honeypot_messages_erased_total",
	Help: "Spam messages deleted by the erasure pass",
})

var ApprovalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "honeypot_approvals_total",
	Help: "Tolerant-mode reports resolved by moderators",
}, []string{"resolution"})

var EvidenceFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "honeypot_evidence_fetch_failures_total",
	Help: "Channel enumerations or message fetches that failed during evidence collection",
})

var GatewayHealthy = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "honeypot_gateway_healthy",
	Help: "1 while the Discord gateway acknowledges heartbeats, 0 once it goes quiet",
})

// Incident outcome labels.
const (
	OutcomeActioned     = "actioned"
	OutcomeProposed     = "proposed"
	OutcomeModerator    = "moderator"
	OutcomeUnconfigured = "unconfigured"
)

// Action result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
