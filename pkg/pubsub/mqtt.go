package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/mailbox"
	"github.com/Alwanly/attribute-poll/pkg/retry"
)

const disconnectQuiesceMs = 250

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	Retry    retry.Config
}

// mqttClient is the part of mqtt.Client used here.
type mqttClient interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

type mqttPubSub struct {
	client mqttClient
	qos    byte
	logger *logger.CanonicalLogger
	inbox  *mailbox.Mailbox[Message]

	mu     sync.Mutex
	topics map[string]struct{}
}

// NewMQTTPubSub connects to the broker. Subscriptions are restored whenever the
// client reconnects.
func NewMQTTPubSub(ctx context.Context, cfg MQTTConfig, log *logger.CanonicalLogger) (PubSub, error) {
	p := newMQTTPubSub(nil, cfg.QoS, log)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetOnConnectHandler(func(mqtt.Client) { p.resubscribe() }).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost", logger.String("broker", cfg.Broker))
		})
	p.client = mqtt.NewClient(opts)

	err := retry.Do(ctx, cfg.Retry, func(ctx context.Context) error {
		return waitToken(ctx, p.client.Connect())
	}, func(attempt int, wait time.Duration, err error) {
		log.WithError(err).Warn("mqtt broker not reachable, retrying",
			logger.String("broker", cfg.Broker), logger.Int("attempt", attempt), logger.Duration("wait", wait))
	})
	if err != nil {
		p.inbox.Close()
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	log.Info("mqtt client initialized", logger.String("broker", cfg.Broker), logger.String("client_id", cfg.ClientID))
	return p, nil
}

func newMQTTPubSub(client mqttClient, qos byte, log *logger.CanonicalLogger) *mqttPubSub {
	return &mqttPubSub{
		client: client,
		qos:    qos,
		logger: log,
		inbox:  mailbox.New[Message](),
		topics: make(map[string]struct{}),
	}
}

func waitToken(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *mqttPubSub) Publish(ctx context.Context, topic string, message string) error {
	if err := waitToken(ctx, p.client.Publish(topic, p.qos, false, message)); err != nil {
		p.logger.WithError(err).Error("failed to publish message to mqtt", logger.String("topic", topic))
		return err
	}
	return nil
}

// handle runs on the paho router goroutine and must not block.
func (p *mqttPubSub) handle(_ mqtt.Client, m mqtt.Message) {
	p.inbox.Push(Message{Channel: m.Topic(), Payload: string(m.Payload())})
}

func (p *mqttPubSub) Subscribe(ctx context.Context, topics ...string) (<-chan Message, error) {
	for _, topic := range topics {
		if err := waitToken(ctx, p.client.Subscribe(topic, p.qos, p.handle)); err != nil {
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		p.mu.Lock()
		p.topics[topic] = struct{}{}
		p.mu.Unlock()
	}
	if len(topics) > 0 {
		p.logger.Info("subscribed to mqtt topics", logger.Any("topics", topics))
	}
	return p.inbox.Out(), nil
}

func (p *mqttPubSub) Unsubscribe(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	p.mu.Lock()
	for _, topic := range topics {
		delete(p.topics, topic)
	}
	p.mu.Unlock()
	return waitToken(ctx, p.client.Unsubscribe(topics...))
}

func (p *mqttPubSub) resubscribe() {
	p.mu.Lock()
	topics := make([]string, 0, len(p.topics))
	for topic := range p.topics {
		topics = append(topics, topic)
	}
	p.mu.Unlock()

	for _, topic := range topics {
		if t := p.client.Subscribe(topic, p.qos, p.handle); t.Wait() && t.Error() != nil {
			p.logger.WithError(t.Error()).Error("failed to resubscribe", logger.String("topic", topic))
		}
	}
}

func (p *mqttPubSub) Close() error {
	p.inbox.Close()
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesceMs)
	}
	return nil
}
