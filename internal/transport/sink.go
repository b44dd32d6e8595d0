package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alwanly/attribute-poll/pkg/pubsub"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

// ResolveMessage is what the device side receives for each resolver request.
type ResolveMessage struct {
	RequestID string `json:"request_id"`
	Attribute uint64 `json:"attribute"`
	Type      string `json:"type"`
	Frame     []byte `json:"frame,omitempty"`
}

// PublishSink is a resolver.Sink that publishes requests on one topic.
type PublishSink struct {
	pub   pubsub.Publisher
	topic string
}

var _ resolver.Sink = (*PublishSink)(nil)

func NewPublishSink(pub pubsub.Publisher, topic string) *PublishSink {
	return &PublishSink{pub: pub, topic: topic}
}

func (s *PublishSink) Submit(ctx context.Context, req resolver.Request) error {
	body, err := json.Marshal(ResolveMessage{
		RequestID: uuid.NewString(),
		Attribute: uint64(req.Attribute),
		Type:      req.Type.String(),
		Frame:     req.Frame,
	})
	if err != nil {
		return fmt.Errorf("failed to encode resolve request: %w", err)
	}
	return s.pub.Publish(ctx, s.topic, string(body))
}
