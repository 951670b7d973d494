// Package service builds gateway add-contexts links for care contexts the
// clinical system created after a patient was linked. Each accepted request is
// recorded as a linked account so later discovery no longer offers the same
// care contexts to that user.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hipservice/internal/discovery/models"
	"hipservice/internal/userauth"
	dErrors "hipservice/pkg/domain-errors"
	"hipservice/pkg/platform/audit"
	pstrings "hipservice/pkg/platform/strings"
	"hipservice/pkg/requestcontext"
)

// TokenSource returns the access token the gateway issued for a health id.
type TokenSource interface {
	AccessToken(ctx context.Context, healthID string) (string, error)
}

// LinkStore records established links.
type LinkStore interface {
	Save(ctx context.Context, link models.LinkedAccount) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AddContextsRequest asks to link care contexts of one patient to the
// consent-manager user behind HealthID.
type AddContextsRequest struct {
	HealthID        string
	ReferenceNumber string
	Display         string
	CareContexts    []models.CareContext
}

// AddContextsLink is the payload forwarded to the gateway's add-contexts API.
type AddContextsLink struct {
	RequestID       string
	Timestamp       time.Time
	AccessToken     string
	ReferenceNumber string
	Display         string
	CareContexts    []models.CareContext
}

type Service struct {
	tokens         TokenSource
	links          LinkStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(tokens TokenSource, links LinkStore, opts ...Option) *Service {
	s := &Service{
		tokens: tokens,
		links:  links,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddContexts resolves the stored access token for the health id, records the
// link and returns the gateway payload. Care contexts repeating a reference
// number are sent once, first occurrence wins.
func (s *Service) AddContexts(ctx context.Context, req AddContextsRequest) (*AddContextsLink, error) {
	if !userauth.IsValidHealthID(req.HealthID) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "HealthId is invalid")
	}
	if req.ReferenceNumber == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "referenceNumber is required")
	}

	refs := make([]string, 0, len(req.CareContexts))
	for _, cc := range req.CareContexts {
		refs = append(refs, cc.ReferenceNumber)
	}
	refs = pstrings.DedupeAndTrim(refs)
	if len(refs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one care context is required")
	}
	careContexts := firstByReference(req.CareContexts, refs)

	token, err := s.tokens.AccessToken(ctx, req.HealthID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access token")
	}

	link := &AddContextsLink{
		RequestID:       uuid.NewString(),
		Timestamp:       requestcontext.Now(ctx).UTC(),
		AccessToken:     token,
		ReferenceNumber: req.ReferenceNumber,
		Display:         req.Display,
		CareContexts:    careContexts,
	}
	err = s.links.Save(ctx, models.LinkedAccount{
		RequesterID:            req.HealthID,
		PatientReferenceNumber: req.ReferenceNumber,
		LinkReferenceNumber:    link.RequestID,
		CareContexts:           refs,
		DateCreated:            link.Timestamp,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record linked care contexts")
	}

	s.logAudit(ctx, req.HealthID, req.ReferenceNumber, link.RequestID, len(careContexts))
	return link, nil
}

// firstByReference keeps, for each trimmed reference in refs, the first care
// context carrying it.
func firstByReference(careContexts []models.CareContext, refs []string) []models.CareContext {
	byRef := make(map[string]models.CareContext, len(refs))
	for _, cc := range careContexts {
		cc.ReferenceNumber = strings.TrimSpace(cc.ReferenceNumber)
		if _, ok := byRef[cc.ReferenceNumber]; !ok {
			byRef[cc.ReferenceNumber] = cc
		}
	}
	out := make([]models.CareContext, 0, len(refs))
	for _, ref := range refs {
		out = append(out, byRef[ref])
	}
	return out
}

func (s *Service) logAudit(ctx context.Context, healthID, referenceNumber, linkReference string, careContexts int) {
	args := []any{
		"health_id", healthID,
		"patient_reference", referenceNumber,
		"link_reference", linkReference,
		"care_contexts", careContexts,
		"log_type", "audit",
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, string(audit.EventLinkContextsAdded), args...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:          healthID,
		Action:           string(audit.EventLinkContextsAdded),
		PatientReference: referenceNumber,
		RequestID:        requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(audit.EventLinkContextsAdded), "error", err)
	}
}
