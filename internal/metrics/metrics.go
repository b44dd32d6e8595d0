package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsTotal tracks poll attempts by outcome
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_polls_total",
			Help: "Total number of attribute polls",
		},
		[]string{"result"}, // marked, mark_failed, queue_empty
	)

	// CommandsTotal tracks engine commands handled
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_commands_total",
			Help: "Total number of poll commands handled",
		},
		[]string{"command"},
	)

	// AttributeEventsTotal tracks attribute store events seen by the engine
	AttributeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_attribute_events_total",
			Help: "Total number of attribute events handled by the poll engine",
		},
		[]string{"event"}, // created, updated, deleted
	)

	// QueueLength tracks the number of scheduled attributes
	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attribute_poll_queue_length",
			Help: "Number of attributes currently in the poll queue",
		},
	)

	// RuleExecutionsTotal tracks resolver rule outcomes
	RuleExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_rule_executions_total",
			Help: "Total number of resolver rule executions",
		},
		[]string{"type", "status"},
	)

	// ResolveRequestsTotal tracks frames handed to the resolve sink
	ResolveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_resolve_requests_total",
			Help: "Total number of resolve requests submitted",
		},
		[]string{"outcome"}, // success, failure
	)

	// TransportMessagesTotal tracks inbound command messages
	TransportMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribute_poll_transport_messages_total",
			Help: "Total number of command messages received",
		},
		[]string{"source", "outcome"}, // accepted, invalid
	)
)
