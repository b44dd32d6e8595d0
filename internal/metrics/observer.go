package metrics

import (
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PollObserver records engine activity in the package counters.
type PollObserver struct{}

var _ poll.Observer = PollObserver{}

func (PollObserver) PollCompleted(result string) { PollsTotal.WithLabelValues(result).Inc() }
func (PollObserver) CommandHandled(kind string)  { CommandsTotal.WithLabelValues(kind).Inc() }
func (PollObserver) QueueLength(n int)           { QueueLength.Set(float64(n)) }

func (PollObserver) EventHandled(t attribute.EventType) {
	AttributeEventsTotal.WithLabelValues(t.String()).Inc()
}

// ResolverObserver records rule executions and sink submissions.
type ResolverObserver struct{}

var _ resolver.Observer = ResolverObserver{}

func (ResolverObserver) RuleExecuted(t attribute.Type, status resolver.Status) {
	RuleExecutionsTotal.WithLabelValues(t.String(), status.String()).Inc()
}

func (ResolverObserver) RequestSubmitted(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	ResolveRequestsTotal.WithLabelValues(outcome).Inc()
}
