package adapter

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/pubsub/port"
)

// RedisBroker implements port.Broker over redis pub/sub. One Subscribe call
// maps to one redis subscription; fanout to local sockets happens above this
// layer.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to redis using a URL (redis://host:port/db) and
// verifies connectivity.
func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisBroker{client: c}, nil
}

var _ port.Broker = (*RedisBroker)(nil)

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (port.Subscription, error) {
	ps := b.client.Subscribe(ctx, channel)
	// Force the SUBSCRIBE round trip so failures surface here instead of on
	// the first read.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	sub := &redisSubscription{ps: ps, out: make(chan []byte, 64)}
	go sub.pump()
	return sub, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		s.out <- []byte(msg.Payload)
	}
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error { return s.ps.Close() }
