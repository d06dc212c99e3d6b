// Package notifier publishes domain events for the external notification
// service (order confirmations, payment receipts). Delivery is fire-and-forget:
// a publish failure is logged and never fails the request that produced it.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 2 * time.Second

// Event kinds consumed by the notifier.
const (
	EventOrderCreated     = "order.created"
	EventPaymentCompleted = "payment.completed"
)

type Event struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer, log: log}
}

// Publish sends one event keyed by the owning user. Best effort only.
func (p *Publisher) Publish(ctx context.Context, key string, kind string, payload any) {
	data, err := json.Marshal(Event{Kind: kind, OccurredAt: time.Now(), Payload: payload})
	if err != nil {
		p.log.Error().Err(err).Str("kind", kind).Msg("notifier: marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Error().Err(err).Str("kind", kind).Msg("notifier: publish failed")
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
