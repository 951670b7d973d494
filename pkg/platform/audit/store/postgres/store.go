package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "hipservice/pkg/platform/audit"
	txcontext "hipservice/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by outbox.Relay.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Payload is the JSON document stored in outbox.payload and published as the
// Kafka record value.
type Payload struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Timestamp        string `json:"timestamp"`
	Subject          string `json:"subject"`
	Action           string `json:"action"`
	Decision         string `json:"decision,omitempty"`
	Reason           string `json:"reason,omitempty"`
	PatientReference string `json:"patientReference,omitempty"`
	TransactionID    string `json:"transactionId,omitempty"`
	RequestID        string `json:"requestId,omitempty"`
}

// Append writes an audit event to the outbox table. When ctx carries a
// transaction the insert joins it.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Always derive category from action - eventCategories map is the source of truth
	category := audit.AuditEvent(event.Action).Category()

	payload := Payload{
		ID:               eventID.String(),
		Category:         string(category),
		Timestamp:        event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:          event.Subject,
		Action:           event.Action,
		Decision:         event.Decision,
		Reason:           event.Reason,
		PatientReference: event.PatientReference,
		TransactionID:    event.TransactionID,
		RequestID:        event.RequestID,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if event.Subject != "" {
		aggregateType = "subject"
		aggregateID = event.Subject
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		eventID,
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListBySubject returns the outbox events recorded for subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM outbox
		WHERE aggregate_type = 'subject' AND aggregate_id = $1
		ORDER BY created_at ASC
	`
	rows, err := txcontext.ExecutorFor(ctx, s.db).QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		event, err := DecodePayload(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return events, nil
}

// DecodePayload turns an outbox payload back into an audit.Event.
func DecodePayload(raw []byte) (audit.Event, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	return audit.Event{
		Category:         audit.EventCategory(p.Category),
		Timestamp:        ts,
		Subject:          p.Subject,
		Action:           p.Action,
		Decision:         p.Decision,
		Reason:           p.Reason,
		PatientReference: p.PatientReference,
		TransactionID:    p.TransactionID,
		RequestID:        p.RequestID,
	}, nil
}
