package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// OutboxMessage is an event written in the same transaction as the state
// change it describes, waiting to be relayed.
type OutboxMessage struct {
	ID        string `db:"id"`
	Topic     string `db:"topic"`
	Key       string `db:"msg_key"`
	Payload   string `db:"payload"`
	CreatedAt string `db:"created_at"`
}

type OutboxRepo struct{ db *sqlx.DB }

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

func insertOutbox(ctx context.Context, tx *sqlx.Tx, topic, key string, payload []byte, at string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO outbox(id, topic, msg_key, payload, created_at) VALUES(?,?,?,?,?)`),
		uuid.NewString(), topic, key, string(payload), at)
	return err
}

// Pending returns up to limit unsent messages, oldest first.
func (r *OutboxRepo) Pending(ctx context.Context, limit int) ([]OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []OutboxMessage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, topic, msg_key, payload, created_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY created_at, id
		LIMIT ?`), limit)
	return out, err
}

func (r *OutboxRepo) MarkSent(ctx context.Context, ids []string, at string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`UPDATE outbox SET sent_at = ? WHERE id IN (?)`, at, ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	return err
}
