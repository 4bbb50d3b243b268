package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/mathieu6700417/conciergeriecordo/internal/infrastructure/notify"
)

// MailSender queues rendered messages for an external mailer consuming the topic.
type MailSender struct {
	w messageWriter
}

func NewMailSender(c *Client, topic string) (*MailSender, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return &MailSender{w: c.NewWriter(topic)}, nil
}

func (s *MailSender) Send(ctx context.Context, m notify.Message) error {
	err := publishJSON(ctx, s.w, m.OrderID, m,
		kafka.Header{Key: headerEventName, Value: []byte("mail." + m.Kind)},
	)
	if err != nil {
		return fmt.Errorf("kafka: send %s for order %s: %w", m.Kind, m.OrderID, err)
	}
	return nil
}

func (s *MailSender) Close() error { return s.w.Close() }
