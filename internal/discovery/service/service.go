// Package service is the discovery entry point: it gates on the transaction
// id, resolves at most one patient and reconciles the care contexts to disclose.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hipservice/internal/discovery/metrics"
	"hipservice/internal/discovery/models"
	"hipservice/internal/discovery/ports"
	"hipservice/pkg/platform/audit"
	"hipservice/pkg/requestcontext"
)

// Matcher narrows record-source candidates for a query.
type Matcher interface {
	Match(ctx context.Context, verified, unverified []models.Identifier, demographics models.Demographics) ([]models.ScoredCandidate, error)
}

// Reconciler computes the disclosable care contexts of a resolved patient.
type Reconciler interface {
	Reconcile(ctx context.Context, requesterID, referenceNumber string) (models.Reconciliation, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates discovery. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	requests       ports.AuditStore
	matcher        Matcher
	reconciler     Reconciler
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// New constructs a Service.
func New(requests ports.AuditStore, matcher Matcher, reconciler Reconciler, opts ...Option) *Service {
	s := &Service{
		requests:   requests,
		matcher:    matcher,
		reconciler: reconciler,
		logger:     slog.Default(),
		tracer:     otel.Tracer("hipservice/internal/discovery/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover returns exactly one of a result or an error carrying one of the
// discovery codes. The transaction id is recorded before any matching work,
// and that record is the single durable write of a non-duplicate call.
func (s *Service) Discover(ctx context.Context, q models.DiscoveryQuery) (*models.MatchResult, error) {
	if q.RequestID == "" {
		q.RequestID = requestcontext.RequestID(ctx)
	}
	ctx, span := s.tracer.Start(ctx, "discovery.Discover", trace.WithAttributes(
		attribute.String("discovery.transaction_id", q.TransactionID),
	))
	defer span.End()
	start := time.Now()

	result, event, err := s.discover(ctx, q)

	s.metrics.ObserveDiscoverLatency(time.Since(start))
	outcome := "matched"
	if err != nil {
		outcome = models.ToGatewayError(err).Code
		span.SetStatus(codes.Error, outcome)
		if event == audit.EventDiscoveryFailed {
			span.RecordError(err)
		}
	}
	span.SetAttributes(attribute.String("discovery.outcome", outcome))
	s.metrics.IncrementOutcome(outcome)

	attrs := []any{
		"transaction_id", q.TransactionID,
		"requester_id", q.RequesterID,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if result != nil {
		attrs = append(attrs, "patient_reference", result.ReferenceNumber, "care_contexts", len(result.CareContexts))
	}
	if event == audit.EventDiscoveryFailed {
		s.logger.ErrorContext(ctx, "discovery failed", append(attrs, "error", err)...)
	}
	s.logAudit(ctx, event, q, result, outcome, attrs...)

	return result, err
}

func (s *Service) discover(ctx context.Context, q models.DiscoveryQuery) (*models.MatchResult, audit.AuditEvent, error) {
	requestedAt := q.Timestamp
	if requestedAt.IsZero() {
		requestedAt = requestcontext.Now(ctx)
	}
	step := time.Now()
	recorded, err := s.requests.TryRecord(ctx, models.DiscoveryRequest{
		TransactionID: q.TransactionID,
		RequesterID:   q.RequesterID,
		RequestID:     q.RequestID,
		RequestedAt:   requestedAt,
	})
	s.metrics.ObserveCollaboratorLatency("dedup", time.Since(step))
	if err != nil {
		return nil, audit.EventDiscoveryFailed, models.ErrServerInternal(err)
	}
	if !recorded {
		return nil, audit.EventDiscoveryDuplicate, models.ErrDuplicateDiscoveryRequest()
	}

	step = time.Now()
	candidates, err := s.matcher.Match(ctx, q.Verified, q.Unverified, q.Demographics)
	s.metrics.ObserveCollaboratorLatency("matcher", time.Since(step))
	if err != nil {
		return nil, audit.EventDiscoveryFailed, models.ErrServerInternal(err)
	}
	switch len(candidates) {
	case 0:
		return nil, audit.EventDiscoveryNoMatch, models.ErrNoPatientFound()
	case 1:
	default:
		return nil, audit.EventDiscoveryAmbiguous, models.ErrMultiplePatientsFound()
	}
	candidate := candidates[0]

	step = time.Now()
	reconciled, err := s.reconciler.Reconcile(ctx, q.RequesterID, candidate.Patient.ReferenceNumber)
	s.metrics.ObserveCollaboratorLatency("linkage", time.Since(step))
	if err != nil {
		return nil, audit.EventDiscoveryFailed, models.ErrServerInternal(err)
	}

	tags := models.MatchSet{}
	tags.Union(candidate.MatchedBy)
	if reconciled.Linked {
		tags.Add(models.MatchConsentManagerUserID)
	}
	careContexts := reconciled.CareContexts
	if careContexts == nil {
		careContexts = []models.CareContext{}
	}

	return &models.MatchResult{
		ReferenceNumber: candidate.Patient.ReferenceNumber,
		Display:         candidate.Patient.Name,
		CareContexts:    careContexts,
		MatchedBy:       tags.Ordered(),
	}, audit.EventDiscoveryMatched, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, q models.DiscoveryQuery, result *models.MatchResult, decision string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	e := audit.Event{
		Subject:       q.RequesterID,
		Action:        string(event),
		Decision:      decision,
		TransactionID: q.TransactionID,
		RequestID:     q.RequestID,
	}
	if result != nil {
		e.PatientReference = result.ReferenceNumber
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"transaction_id", q.TransactionID,
			"error", err,
		)
	}
}
