package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hipservice/internal/discovery/linkage"
	"hipservice/internal/discovery/models"
	"hipservice/internal/link/service"
	"hipservice/internal/link/store"
	"hipservice/internal/userauth"
	userauthstore "hipservice/internal/userauth/store"
	dErrors "hipservice/pkg/domain-errors"
	"hipservice/pkg/platform/audit"
	"hipservice/pkg/platform/audit/publisher"
	"hipservice/pkg/platform/audit/store/memory"
	"hipservice/pkg/requestcontext"
	"hipservice/pkg/testutil"
)

const healthID = "asha.rao@sbx"

type failingLinks struct{}

func (failingLinks) Save(context.Context, models.LinkedAccount) error { return errors.New("db down") }

type staticCareContexts []models.CareContext

func (s staticCareContexts) GetCareContexts(context.Context, string) ([]models.CareContext, error) {
	return s, nil
}

type LinkServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	auth       *userauth.Service
	links      *store.InMemoryStore
	auditStore *memory.InMemoryStore
	service    *service.Service
	token      string
}

func TestLinkServiceSuite(t *testing.T) {
	suite.Run(t, new(LinkServiceSuite))
}

func (s *LinkServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), s.now), "R-1")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.auth = userauth.New(userauthstore.NewInMemory(time.Minute), time.Minute, 24*time.Hour, userauth.WithLogger(logger))
	s.links = store.NewInMemory()
	s.auditStore = memory.NewInMemoryStore()
	s.service = service.New(s.auth, s.links,
		service.WithLogger(logger),
		service.WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
}

// confirm runs the gateway auth handshake so an access token is on file.
func (s *LinkServiceSuite) confirm() {
	s.token = testutil.GatewayToken(s.T(), []byte("cm-key"), healthID, time.Hour)
	s.Require().NoError(s.auth.OnAuthInit(context.Background(), healthID, "TX-1"))
	s.Require().NoError(s.auth.OnAuthConfirm(context.Background(), healthID, s.token))
}

func request(refs ...string) service.AddContextsRequest {
	careContexts := make([]models.CareContext, 0, len(refs))
	for _, ref := range refs {
		careContexts = append(careContexts, models.CareContext{ReferenceNumber: ref, Display: "Visit " + ref})
	}
	return service.AddContextsRequest{
		HealthID:        healthID,
		ReferenceNumber: "REF-1",
		Display:         "Asha Rao",
		CareContexts:    careContexts,
	}
}

// =============================================================================
// Add contexts
// =============================================================================

func (s *LinkServiceSuite) TestAddContexts() {
	s.Run("builds the gateway link with the stored token and records it", func() {
		s.confirm()

		link, err := s.service.AddContexts(s.ctx, request("CC-1", "CC-2", "CC-1"))
		s.Require().NoError(err)
		s.Equal(s.token, link.AccessToken)
		s.Equal("REF-1", link.ReferenceNumber)
		s.Equal("Asha Rao", link.Display)
		s.Equal(s.now, link.Timestamp)
		s.NotEmpty(link.RequestID)
		s.Equal([]models.CareContext{
			{ReferenceNumber: "CC-1", Display: "Visit CC-1"},
			{ReferenceNumber: "CC-2", Display: "Visit CC-2"},
		}, link.CareContexts)

		accounts, err := s.links.GetLinkedAccounts(s.ctx, healthID)
		s.Require().NoError(err)
		s.Require().Len(accounts, 1)
		s.Equal(models.LinkedAccount{
			RequesterID:            healthID,
			PatientReferenceNumber: "REF-1",
			LinkReferenceNumber:    link.RequestID,
			CareContexts:           []string{"CC-1", "CC-2"},
			DateCreated:            s.now,
		}, accounts[0])

		events, err := s.auditStore.ListBySubject(s.ctx, healthID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventLinkContextsAdded), events[0].Action)
		s.Equal("REF-1", events[0].PatientReference)
		s.Equal("R-1", events[0].RequestID)
	})

	s.Run("linked contexts are no longer disclosed by discovery", func() {
		s.confirm()
		_, err := s.service.AddContexts(s.ctx, request("CC-1"))
		s.Require().NoError(err)

		reconciler := linkage.New(s.links, staticCareContexts{{ReferenceNumber: "CC-1"}, {ReferenceNumber: "CC-3"}})
		got, err := reconciler.Reconcile(s.ctx, healthID, "REF-1")
		s.Require().NoError(err)
		s.True(got.Linked)
		s.Equal([]models.CareContext{{ReferenceNumber: "CC-3"}}, got.CareContexts)
	})
}

func (s *LinkServiceSuite) TestAddContextsRejections() {
	s.Run("no access token on file", func() {
		_, err := s.service.AddContexts(s.ctx, request("CC-1"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "got %v", err)
	})

	s.Run("invalid health id", func() {
		req := request("CC-1")
		req.HealthID = "asha"
		_, err := s.service.AddContexts(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("only blank care context references", func() {
		_, err := s.service.AddContexts(s.ctx, request(" ", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("store failure is internal", func() {
		s.confirm()
		svc := service.New(s.auth, failingLinks{})
		_, err := svc.AddContexts(s.ctx, request("CC-1"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
