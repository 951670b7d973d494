package request

import (
	"context"
	"database/sql"
	"fmt"

	"hipservice/internal/discovery/models"
	txcontext "hipservice/pkg/platform/tx"
)

// PostgresStore records discovery requests in discovery_requests. The primary
// key on transaction_id makes TryRecord atomic.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed discovery request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) TryRecord(ctx context.Context, req models.DiscoveryRequest) (bool, error) {
	res, err := txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO discovery_requests (transaction_id, requester_id, request_id, requested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transaction_id) DO NOTHING
	`, req.TransactionID, req.RequesterID, req.RequestID, req.RequestedAt)
	if err != nil {
		return false, fmt.Errorf("insert discovery request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert discovery request: %w", err)
	}
	return n == 1, nil
}
