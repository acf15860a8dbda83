package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sevaflow_inbound_events_total",
		Help: "Inbound webhook events by kind.",
	}, []string{"kind"})

	TriggerMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sevaflow_trigger_matches_total",
		Help: "Flow starts by flow type.",
	}, []string{"flow_type"})

	StaleSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sevaflow_stale_sessions_total",
		Help: "Session advancements dropped to a concurrent duplicate delivery.",
	})

	StepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sevaflow_step_errors_total",
		Help: "Step executions that ended in the error fallback.",
	})

	ActionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sevaflow_action_failures_total",
		Help: "Failed api_call step invocations.",
	})

	OutboundIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sevaflow_outbound_intents_total",
		Help: "Outbound intents produced by kind.",
	}, []string{"kind"})
)
