package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"hipservice/internal/discovery/models"
	"hipservice/pkg/platform/sentinel"
	txcontext "hipservice/pkg/platform/tx"
	"hipservice/pkg/requestcontext"
)

// PostgresStore persists links in linked_accounts; care contexts are a text[].
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed linkage store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, link models.LinkedAccount) error {
	if err := validate(link); err != nil {
		return err
	}
	if link.DateCreated.IsZero() {
		link.DateCreated = requestcontext.Now(ctx)
	}
	careContexts := link.CareContexts
	if careContexts == nil {
		careContexts = []string{}
	}
	res, err := txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO linked_accounts (link_reference_number, requester_id, patient_reference_number, patient_uuid, care_contexts, date_created)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (link_reference_number) DO NOTHING
	`, link.LinkReferenceNumber, link.RequesterID, link.PatientReferenceNumber, link.PatientUUID,
		pq.Array(careContexts), link.DateCreated)
	if err != nil {
		return fmt.Errorf("insert linked account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert linked account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("link %s: %w", link.LinkReferenceNumber, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) GetLinkedAccounts(ctx context.Context, requesterID string) ([]models.LinkedAccount, error) {
	rows, err := txcontext.ExecutorFor(ctx, s.db).QueryContext(ctx, `
		SELECT link_reference_number, requester_id, patient_reference_number, patient_uuid, care_contexts, date_created
		FROM linked_accounts
		WHERE requester_id = $1
		ORDER BY date_created, link_reference_number
	`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("query linked accounts: %w", err)
	}
	defer rows.Close()

	out := make([]models.LinkedAccount, 0)
	for rows.Next() {
		var link models.LinkedAccount
		if err := rows.Scan(
			&link.LinkReferenceNumber,
			&link.RequesterID,
			&link.PatientReferenceNumber,
			&link.PatientUUID,
			pq.Array(&link.CareContexts),
			&link.DateCreated,
		); err != nil {
			return nil, fmt.Errorf("scan linked account: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked accounts: %w", err)
	}
	return out, nil
}
