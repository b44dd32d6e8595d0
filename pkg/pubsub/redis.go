package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/retry"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Retry    retry.Config
}

type redisPubSub struct {
	client *redis.Client
	logger *logger.CanonicalLogger

	mu        sync.Mutex
	pubsub    *redis.PubSub
	messageCh chan Message
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewRedisPubSub connects to redis, retrying the initial ping per cfg.Retry.
func NewRedisPubSub(ctx context.Context, cfg RedisConfig, log *logger.CanonicalLogger) (PubSub, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := retry.Do(ctx, cfg.Retry, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, func(attempt int, wait time.Duration, err error) {
		log.WithError(err).Warn("redis not reachable, retrying",
			logger.String("addr", addr), logger.Int("attempt", attempt), logger.Duration("wait", wait))
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	log.Info("redis client initialized", logger.String("addr", addr))
	return &redisPubSub{
		client:    client,
		logger:    log,
		messageCh: make(chan Message, 16),
	}, nil
}

func (r *redisPubSub) Publish(ctx context.Context, channel string, message string) error {
	if err := r.client.Publish(ctx, channel, message).Err(); err != nil {
		r.logger.WithError(err).Error("failed to publish message to redis", logger.String("channel", channel))
		return err
	}
	return nil
}

func (r *redisPubSub) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Subscribe adds channels to the single redis subscription. The listener is
// started on the first call.
func (r *redisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	if len(channels) == 0 {
		return r.messageCh, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pubsub != nil {
		if err := r.pubsub.Subscribe(ctx, channels...); err != nil {
			return nil, fmt.Errorf("failed to subscribe: %w", err)
		}
	} else {
		r.pubsub = r.client.Subscribe(ctx, channels...)
		if _, err := r.pubsub.Receive(ctx); err != nil {
			_ = r.pubsub.Close()
			r.pubsub = nil
			return nil, fmt.Errorf("failed to subscribe: %w", err)
		}
		listenCtx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		r.done = make(chan struct{})
		go r.listen(listenCtx, r.pubsub.Channel())
	}

	r.logger.Info("subscribed to redis channels", logger.Any("channels", channels))
	return r.messageCh, nil
}

func (r *redisPubSub) Unsubscribe(ctx context.Context, channels ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub == nil {
		return nil
	}
	return r.pubsub.Unsubscribe(ctx, channels...)
}

func (r *redisPubSub) Close() error {
	var err error
	r.closeOnce.Do(func() { err = r.close() })
	return err
}

func (r *redisPubSub) close() error {
	r.mu.Lock()
	cancel, done, ps := r.cancel, r.done, r.pubsub
	r.cancel, r.pubsub = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if ps != nil {
		_ = ps.Close()
	}
	close(r.messageCh)

	if err := r.client.Close(); err != nil {
		r.logger.WithError(err).Error("failed to close redis client")
		return err
	}
	return nil
}

func (r *redisPubSub) listen(ctx context.Context, ch <-chan *redis.Message) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping redis listener")
			return
		case m, ok := <-ch:
			if !ok {
				r.logger.Info("redis pubsub channel closed")
				return
			}
			select {
			case r.messageCh <- Message{Channel: m.Channel, Payload: m.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}
