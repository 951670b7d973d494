package userauth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "hipservice/pkg/domain-errors"
	"hipservice/pkg/platform/audit"
	"hipservice/pkg/platform/sentinel"
	"hipservice/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the HIP side of the gateway auth handshake.
type Service struct {
	store          Store
	transactionTTL time.Duration
	maxTokenTTL    time.Duration
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

// New constructs a Service. transactionTTL bounds how long an on-init
// transaction waits for on-confirm; maxTokenTTL caps access token retention.
func New(store Store, transactionTTL, maxTokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		store:          store,
		transactionTTL: transactionTTL,
		maxTokenTTL:    maxTokenTTL,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnAuthInit records the transaction the gateway opened for healthID.
func (s *Service) OnAuthInit(ctx context.Context, healthID, transactionID string) error {
	if !IsValidHealthID(healthID) {
		return errInvalidHealthID()
	}
	if transactionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "transactionId is required")
	}
	if err := s.store.SaveTransaction(ctx, healthID, transactionID, s.transactionTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save auth transaction")
	}
	s.logAudit(ctx, audit.EventAuthInitiated, healthID, transactionID,
		"cm_suffix", CMSuffix(healthID),
	)
	return nil
}

// OnAuthConfirm stores accessToken for healthID and closes its pending
// transaction. The token is kept until its exp claim, capped at maxTokenTTL.
func (s *Service) OnAuthConfirm(ctx context.Context, healthID, accessToken string) error {
	if !IsValidHealthID(healthID) {
		return errInvalidHealthID()
	}
	ttl, err := s.tokenTTL(ctx, accessToken)
	if err != nil {
		return err
	}

	transactionID, err := s.store.TakeTransaction(ctx, healthID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no pending auth transaction for health id")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load auth transaction")
	}

	if err := s.store.SaveAccessToken(ctx, healthID, accessToken, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save access token")
	}
	s.logAudit(ctx, audit.EventAuthConfirmed, healthID, transactionID,
		"token_ttl_s", int64(ttl.Seconds()),
	)
	return nil
}

// AccessToken returns the live access token for healthID.
func (s *Service) AccessToken(ctx context.Context, healthID string) (string, error) {
	token, err := s.store.AccessToken(ctx, healthID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeNotFound, "no access token for health id")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access token")
	}
	return token, nil
}

// tokenTTL reads exp without verifying the signature; the token is only held
// for forwarding to the gateway, which verifies it.
func (s *Service) tokenTTL(ctx context.Context, accessToken string) (time.Duration, error) {
	if accessToken == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "accessToken is required")
	}
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "accessToken is not a JWT")
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "accessToken has a malformed exp claim")
	}
	if exp == nil {
		return s.maxTokenTTL, nil
	}
	ttl := exp.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "accessToken has expired")
	}
	return min(ttl, s.maxTokenTTL), nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, healthID, transactionID string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "health_id", healthID, "transaction_id", transactionID, "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:       healthID,
		Action:        string(event),
		TransactionID: transactionID,
		RequestID:     requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
