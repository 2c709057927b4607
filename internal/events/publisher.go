// Package events relays outbox records to a message broker.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/log"
)

// Message is one outbox record on its way out.
type Message struct {
	Topic   string
	Key     string
	Payload []byte
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// Brokers splits a comma-separated broker list, dropping blanks.
func Brokers(csv string) []string {
	out := []string{}
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// KafkaPublisher writes to Kafka; each message carries its own topic.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now().UTC()
	for _, m := range msgs {
		km = append(km, kafka.Message{Topic: m.Topic, Key: []byte(m.Key), Value: m.Payload, Time: now})
	}
	return p.w.WriteMessages(ctx, km...)
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// LogPublisher is used when no broker is configured: events end up in the
// structured log.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		log.Info(nil, "event", map[string]any{"topic": m.Topic, "key": m.Key, "payload": string(m.Payload)})
	}
	return nil
}

func (LogPublisher) Close() error { return nil }
