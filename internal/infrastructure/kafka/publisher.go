package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
)

const headerEventName = "event-name"

// EventPublisher forwards domain events to a topic, keyed by aggregate id.
type EventPublisher struct {
	w messageWriter
}

func NewEventPublisher(c *Client, topic string) (*EventPublisher, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return &EventPublisher{w: c.NewWriter(topic)}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	err := publishJSON(ctx, p.w, domoutbox.KeyOf(e), e,
		kafka.Header{Key: headerEventName, Value: []byte(e.EventName())},
	)
	if err != nil {
		return fmt.Errorf("kafka: publish %s: %w", e.EventName(), err)
	}
	return nil
}

func (p *EventPublisher) Close() error { return p.w.Close() }
