package events

import (
	"context"
	"time"

	"storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

// Relay polls the outbox and hands unsent records to a Publisher. Records
// are marked sent only after a successful publish, so delivery is
// at-least-once.
type Relay struct {
	Outbox    *repos.OutboxRepo
	Publisher Publisher
	Metrics   *metrics.Metrics
	Interval  time.Duration
	Batch     int
}

func NewRelay(outbox *repos.OutboxRepo, pub Publisher, m *metrics.Metrics, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{Outbox: outbox, Publisher: pub, Metrics: m, Interval: interval, Batch: 100}
}

// Run drains the outbox every Interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			log.Error(nil, "outbox_flush", err, nil)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Flush publishes one batch and returns how many records went out.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.Outbox.Pending(ctx, r.Batch)
	if err != nil || len(pending) == 0 {
		return 0, err
	}
	msgs := make([]Message, 0, len(pending))
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		msgs = append(msgs, Message{Topic: p.Topic, Key: p.Key, Payload: []byte(p.Payload)})
		ids = append(ids, p.ID)
	}
	if err := r.Publisher.Publish(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := r.Outbox.MarkSent(ctx, ids, repos.Timestamp(time.Now())); err != nil {
		return 0, err
	}
	r.Metrics.Sent(len(ids))
	return len(ids), nil
}
