package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alwanly/attribute-poll/internal/metrics"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/pubsub"
	"github.com/Alwanly/attribute-poll/pkg/validator"
)

const (
	outcomeAccepted = "accepted"
	outcomeInvalid  = "invalid"
)

// Sender accepts engine commands without blocking.
type Sender interface {
	Send(cmd poll.Command)
}

// Listener forwards command messages from one subscriber to the poll engine.
type Listener struct {
	sub    pubsub.Subscriber
	sender Sender
	logger *logger.CanonicalLogger
	source string
	topics []string
}

func NewListener(sub pubsub.Subscriber, sender Sender, log *logger.CanonicalLogger, source string, topics ...string) *Listener {
	return &Listener{
		sub:    sub,
		sender: sender,
		logger: log.Component("transport." + source),
		source: source,
		topics: topics,
	}
}

// Run consumes messages until ctx is done or the subscriber closes its stream.
func (l *Listener) Run(ctx context.Context) error {
	msgs, err := l.sub.Subscribe(ctx, l.topics...)
	if err != nil {
		return fmt.Errorf("failed to subscribe %s listener: %w", l.source, err)
	}
	l.logger.Info("command listener started", logger.Any("topics", l.topics))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				l.logger.Info("command stream closed")
				return nil
			}
			if id, err := l.Handle(m); err != nil {
				l.logger.WithCorrelationID(id).WithError(err).Warn("dropping command message", logger.String("channel", m.Channel))
			}
		}
	}
}

// Handle decodes, validates and forwards a single message. It returns the
// message correlation id, generated when the sender left it empty, so that
// accepted and rejected messages can both be traced.
func (l *Listener) Handle(m pubsub.Message) (string, error) {
	var msg CommandMessage
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		metrics.TransportMessagesTotal.WithLabelValues(l.source, outcomeInvalid).Inc()
		return uuid.NewString(), fmt.Errorf("invalid command payload: %w", err)
	}
	if msg.CorrelationID == "" {
		msg.CorrelationID = uuid.NewString()
	}
	if err := validator.ValidateStruct(msg); err != nil {
		metrics.TransportMessagesTotal.WithLabelValues(l.source, outcomeInvalid).Inc()
		return msg.CorrelationID, fmt.Errorf("invalid command: %v", validator.TranslateError(err))
	}
	cmd, err := msg.ToCommand()
	if err != nil {
		metrics.TransportMessagesTotal.WithLabelValues(l.source, outcomeInvalid).Inc()
		return msg.CorrelationID, err
	}

	l.logger.WithCorrelationID(msg.CorrelationID).Debug("forwarding command",
		logger.String(logger.FieldCommand, cmd.Kind()),
		logger.Attribute(msg.Attribute),
	)
	l.sender.Send(cmd)
	metrics.TransportMessagesTotal.WithLabelValues(l.source, outcomeAccepted).Inc()
	return msg.CorrelationID, nil
}
