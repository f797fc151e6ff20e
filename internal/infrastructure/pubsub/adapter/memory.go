package adapter

import (
	"context"
	"sync"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/pubsub/port"
)

// MemoryBroker is an in-process port.Broker used in tests and single-node
// development runs. Delivery semantics mirror redis pub/sub: published
// payloads reach every current subscriber of the channel, nothing is retained.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string][]*memorySubscription
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

var _ port.Broker = (*MemoryBroker)(nil)

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	targets := make([]*memorySubscription, len(b.subs[channel]))
	copy(targets, b.subs[channel])
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(payload)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (port.Subscription, error) {
	sub := &memorySubscription{
		broker:  b,
		channel: channel,
		out:     make(chan []byte, 64),
	}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.closeOnce()
		}
	}
	b.subs = make(map[string][]*memorySubscription)
	return nil
}

func (b *MemoryBroker) drop(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.subs[sub.channel]
	for i, s := range current {
		if s == sub {
			b.subs[sub.channel] = append(current[:i], current[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.channel]) == 0 {
		delete(b.subs, sub.channel)
	}
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func (s *memorySubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// A full buffer drops the payload, matching redis pub/sub semantics for
	// slow consumers.
	select {
	case s.out <- payload:
	default:
	}
}

func (s *memorySubscription) Messages() <-chan []byte { return s.out }

func (s *memorySubscription) Close() error {
	s.broker.drop(s)
	s.closeOnce()
	return nil
}

func (s *memorySubscription) closeOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}
