package port

import "context"

// Subscription is a live feed of payloads from one broker channel. Messages
// stops yielding after Close or after the underlying transport fails; readers
// must treat channel closure as an unsubscribe signal, not retry forever.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// Broker is the cross-process publish/subscribe medium. Payloads are opaque
// bytes; the fanout layer serializes event envelopes before publishing and
// consumers deserialize defensively.
//
// Each process must hold at most one subscription per channel; callers are
// expected to track "first local registrant" themselves before subscribing.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Close() error
}
