package iface

import (
	"context"
	"fmt"
)

// Publisher is the transport side used by producers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber is the transport side used by consumers. The returned channel is
// closed when the subscription ends.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}

// Publish encodes v and publishes it on the channel's topic.
func Publish[M any](ctx context.Context, p Publisher, ch Channel[M], v M) error {
	payload, err := ch.Encode(v)
	if err != nil {
		return err
	}

	if err = p.Publish(ctx, ch.Topic(), payload); err != nil {
		return fmt.Errorf("publishing on %s: %w", ch.Topic(), err)
	}
	return nil
}

// Consume subscribes to the channel's topic and calls handle with every
// decoded payload until ctx is done or the subscription ends. A payload that
// fails to decode stops consumption and is returned as a *DecodeError.
func Consume[M any](ctx context.Context, s Subscriber, ch Channel[M], handle func(M) error) error {
	payloads, err := s.Subscribe(ctx, ch.Topic())
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", ch.Topic(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case payload, ok := <-payloads:
			if !ok {
				return nil
			}

			v, err := ch.Decode(payload)
			if err != nil {
				return err
			}
			if err = handle(v); err != nil {
				return err
			}
		}
	}
}
