package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

func TestPollObserver(t *testing.T) {
	o := PollObserver{}
	marked := testutil.ToFloat64(PollsTotal.WithLabelValues(poll.PollMarked))
	deleted := testutil.ToFloat64(AttributeEventsTotal.WithLabelValues("deleted"))

	o.PollCompleted(poll.PollMarked)
	o.EventHandled(attribute.Deleted)
	o.QueueLength(3)

	assert.Equal(t, marked+1, testutil.ToFloat64(PollsTotal.WithLabelValues(poll.PollMarked)))
	assert.Equal(t, deleted+1, testutil.ToFloat64(AttributeEventsTotal.WithLabelValues("deleted")))
	assert.Equal(t, float64(3), testutil.ToFloat64(QueueLength))
}

func TestResolverObserver(t *testing.T) {
	o := ResolverObserver{}
	ok := testutil.ToFloat64(ResolveRequestsTotal.WithLabelValues(OutcomeSuccess))
	failed := testutil.ToFloat64(ResolveRequestsTotal.WithLabelValues(OutcomeFailure))

	o.RequestSubmitted(nil)
	o.RequestSubmitted(errors.New("broker down"))
	o.RuleExecuted(attribute.Type(0xFFFF), resolver.StatusAlreadyExists)

	assert.Equal(t, ok+1, testutil.ToFloat64(ResolveRequestsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, failed+1, testutil.ToFloat64(ResolveRequestsTotal.WithLabelValues(OutcomeFailure)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(
		RuleExecutionsTotal.WithLabelValues("0x0000FFFF", resolver.StatusAlreadyExists.String())), float64(1))
}
