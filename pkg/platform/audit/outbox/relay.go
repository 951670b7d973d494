// Package outbox relays audit rows written by the postgres audit store to Kafka.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"

	txcontext "hipservice/pkg/platform/tx"
)

// Producer is the subset of *kgo.Client the relay needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls unpublished outbox rows, produces them and marks them published
// in the same transaction. Rows are locked with SKIP LOCKED so several relays
// can run side by side.
type Relay struct {
	db        *sql.DB
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(db *sql.DB, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		db:        db,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays batches until ctx is cancelled. A failed batch is logged and
// retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
		}
		if n == r.batchSize {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type row struct {
	id          string
	aggregateID string
	eventType   string
	payload     []byte
}

// RelayOnce publishes at most one batch and returns how many rows it marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var published int
	err := txcontext.Run(ctx, r.db, func(ctx context.Context) error {
		exec := txcontext.ExecutorFor(ctx, r.db)
		rows, err := exec.QueryContext(ctx, `
			SELECT id, aggregate_id, event_type, payload
			FROM outbox
			WHERE published_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, r.batchSize)
		if err != nil {
			return fmt.Errorf("select outbox batch: %w", err)
		}
		var batch []row
		for rows.Next() {
			var rw row
			if err := rows.Scan(&rw.id, &rw.aggregateID, &rw.eventType, &rw.payload); err != nil {
				_ = rows.Close()
				return fmt.Errorf("scan outbox row: %w", err)
			}
			batch = append(batch, rw)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("close outbox rows: %w", err)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate outbox rows: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		records := make([]*kgo.Record, 0, len(batch))
		ids := make([]string, 0, len(batch))
		for _, rw := range batch {
			records = append(records, &kgo.Record{
				Topic: r.topic,
				Key:   []byte(rw.aggregateID),
				Value: rw.payload,
				Headers: []kgo.RecordHeader{
					{Key: "event_type", Value: []byte(rw.eventType)},
					{Key: "outbox_id", Value: []byte(rw.id)},
				},
			})
			ids = append(ids, rw.id)
		}
		if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce outbox batch: %w", err)
		}

		if _, err := exec.ExecContext(ctx,
			`UPDATE outbox SET published_at = NOW() WHERE id::text = ANY($1)`,
			pq.Array(ids),
		); err != nil {
			return fmt.Errorf("mark outbox published: %w", err)
		}
		published = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if published > 0 {
		r.logger.DebugContext(ctx, "outbox batch relayed", "count", published, "topic", r.topic)
	}
	return published, nil
}
