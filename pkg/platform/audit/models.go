package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream of the outbox.
type EventCategory string

const (
	// CategoryCompliance covers disclosures and decisions about patient data.
	// These require long retention and guaranteed delivery.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers replayed requests and authentication activity.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers failures useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the consent-manager user id (or health id) the action concerns.
	Subject string
	Action  string
	// Decision is the gateway result code of the action, when it has one.
	Decision string
	Reason   string
	// PatientReference is the local reference number disclosed, if any.
	PatientReference string
	TransactionID    string
	RequestID        string
}

type AuditEvent string

const (
	// Discovery events
	EventDiscoveryMatched   AuditEvent = "discovery_matched"
	EventDiscoveryNoMatch   AuditEvent = "discovery_no_match"
	EventDiscoveryAmbiguous AuditEvent = "discovery_ambiguous"
	EventDiscoveryDuplicate AuditEvent = "discovery_duplicate"
	EventDiscoveryFailed    AuditEvent = "discovery_failed"

	// Linking events
	EventLinkContextsAdded AuditEvent = "link_contexts_added"

	// User auth events
	EventAuthInitiated AuditEvent = "auth_initiated"
	EventAuthConfirmed AuditEvent = "auth_confirmed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventDiscoveryMatched:   CategoryCompliance,
	EventDiscoveryNoMatch:   CategoryCompliance,
	EventDiscoveryAmbiguous: CategoryCompliance,
	EventLinkContextsAdded:  CategoryCompliance,

	EventDiscoveryDuplicate: CategorySecurity,
	EventAuthInitiated:      CategorySecurity,
	EventAuthConfirmed:      CategorySecurity,

	EventDiscoveryFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
