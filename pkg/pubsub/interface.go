package pubsub

import "context"

// Message is one payload received on a channel (redis) or topic (mqtt).
type Message struct {
	Channel string
	Payload string
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message string) error
	Close() error
}

// Subscriber delivers messages from every subscribed channel on a single
// stream, which is closed by Close.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	Unsubscribe(ctx context.Context, channels ...string) error
	Close() error
}

type PubSub interface {
	Publisher
	Subscriber
}
