// Package ports declares the collaborators the discovery engine depends on.
// Adapters (openmrs, postgres, memory) implement them; the engine never
// imports an adapter.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks CandidateLookup,LinkageStore,CareContextStore,AuditStore

import (
	"context"

	"hipservice/internal/discovery/models"
)

// CandidateLookup is the only query the engine needs from the record source.
// It returns a superset of records loosely matching terms.
type CandidateLookup interface {
	Search(ctx context.Context, terms models.SearchTerms) ([]models.CandidatePatient, error)
}

// LinkageStore returns links previously established for a requester.
type LinkageStore interface {
	GetLinkedAccounts(ctx context.Context, requesterID string) ([]models.LinkedAccount, error)
}

// CareContextStore returns the full current care-context list of a patient.
type CareContextStore interface {
	GetCareContexts(ctx context.Context, referenceNumber string) ([]models.CareContext, error)
}

// AuditStore records discovery attempts. TryRecord is an atomic insert-if-absent
// keyed by transaction id; false means the id was already recorded.
type AuditStore interface {
	TryRecord(ctx context.Context, req models.DiscoveryRequest) (bool, error)
}
