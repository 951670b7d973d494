// Package linkage works out which care contexts of a resolved patient have not
// yet been disclosed to the requester.
package linkage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hipservice/internal/discovery/models"
	"hipservice/internal/discovery/ports"
)

type Reconciler struct {
	links        ports.LinkageStore
	careContexts ports.CareContextStore
	tracer       trace.Tracer
}

func New(links ports.LinkageStore, careContexts ports.CareContextStore) *Reconciler {
	return &Reconciler{
		links:        links,
		careContexts: careContexts,
		tracer:       otel.Tracer("hipservice/internal/discovery/linkage"),
	}
}

// Reconcile returns the current care contexts of referenceNumber minus those
// already disclosed over the requester's links to it. Source order is kept and
// repeated reference numbers are reported once.
func (r *Reconciler) Reconcile(ctx context.Context, requesterID, referenceNumber string) (models.Reconciliation, error) {
	ctx, span := r.tracer.Start(ctx, "linkage.Reconcile")
	defer span.End()

	accounts, err := r.links.GetLinkedAccounts(ctx, requesterID)
	if err != nil {
		return models.Reconciliation{}, fmt.Errorf("linked accounts: %w", err)
	}

	disclosed := make(map[string]struct{})
	linked := false
	for _, account := range accounts {
		if account.PatientReferenceNumber != referenceNumber {
			continue
		}
		linked = true
		for _, cc := range account.CareContexts {
			disclosed[cc] = struct{}{}
		}
	}

	current, err := r.careContexts.GetCareContexts(ctx, referenceNumber)
	if err != nil {
		return models.Reconciliation{}, fmt.Errorf("care contexts: %w", err)
	}

	out := make([]models.CareContext, 0, len(current))
	for _, cc := range current {
		if _, seen := disclosed[cc.ReferenceNumber]; seen {
			continue
		}
		disclosed[cc.ReferenceNumber] = struct{}{}
		out = append(out, cc)
	}

	span.SetAttributes(
		attribute.Bool("discovery.linked", linked),
		attribute.Int("discovery.care_contexts.current", len(current)),
		attribute.Int("discovery.care_contexts.disclosable", len(out)),
	)
	return models.Reconciliation{CareContexts: out, Linked: linked}, nil
}
