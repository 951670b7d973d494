package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hipservice/internal/discovery/linkage"
	"hipservice/internal/discovery/matcher"
	"hipservice/internal/discovery/models"
	"hipservice/internal/discovery/ports"
	"hipservice/internal/discovery/ports/mocks"
	"hipservice/internal/discovery/store/request"
	dErrors "hipservice/pkg/domain-errors"
	"hipservice/pkg/platform/audit"
	"hipservice/pkg/platform/audit/publisher"
	"hipservice/pkg/platform/audit/store/memory"
)

type ServiceSuite struct {
	suite.Suite
	ctx          context.Context
	requests     *mocks.MockAuditStore
	lookup       *mocks.MockCandidateLookup
	links        *mocks.MockLinkageStore
	careContexts *mocks.MockCareContextStore
	auditStore   *memory.InMemoryStore
	service      *Service
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.requests = mocks.NewMockAuditStore(ctrl)
	s.lookup = mocks.NewMockCandidateLookup(ctrl)
	s.links = mocks.NewMockLinkageStore(ctrl)
	s.careContexts = mocks.NewMockCareContextStore(ctrl)
	s.auditStore = memory.NewInMemoryStore()
	s.service = s.newService(s.requests)
	s.ctx = context.Background()
}

func (s *ServiceSuite) newService(requests ports.AuditStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(requests,
		matcher.New(s.lookup, matcher.WithLogger(logger)),
		linkage.New(s.links, s.careContexts),
		WithLogger(logger),
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func mobile(v string) models.Identifier {
	return models.Identifier{Type: models.IdentifierMobile, Value: v}
}

func query(txn string) models.DiscoveryQuery {
	return models.DiscoveryQuery{
		RequesterID:   "cm-user@sbx",
		TransactionID: txn,
		RequestID:     "R-" + txn,
		Timestamp:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Verified:      []models.Identifier{mobile("9990001111")},
	}
}

func patient(ref string) models.CandidatePatient {
	return models.CandidatePatient{
		ReferenceNumber: ref,
		Name:            "Asha",
		Gender:          models.GenderFemale,
		PhoneNumber:     "9990001111",
	}
}

func cc(ref string) models.CareContext {
	return models.CareContext{ReferenceNumber: ref, Display: "Visit " + ref}
}

func (s *ServiceSuite) expectRecorded(txn string) {
	s.requests.EXPECT().TryRecord(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req models.DiscoveryRequest) (bool, error) {
			s.Equal(txn, req.TransactionID)
			s.Equal("cm-user@sbx", req.RequesterID)
			return true, nil
		})
}

func (s *ServiceSuite) assertCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, code), "expected %s, got %v", code, err)
}

// =============================================================================
// Positive result
// =============================================================================

func (s *ServiceSuite) TestDiscover_SingleVerifiedMatch() {
	s.Run("verified mobile matching one candidate yields Mobile", func() {
		s.expectRecorded("T-1")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), "cm-user@sbx").Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return([]models.CareContext{cc("CC-1")}, nil)

		result, err := s.service.Discover(s.ctx, query("T-1"))
		s.Require().NoError(err)
		s.Equal("REF-1", result.ReferenceNumber)
		s.Equal("Asha", result.Display)
		s.Equal([]models.MatchType{models.MatchMobile}, result.MatchedBy)
		s.Equal([]models.CareContext{cc("CC-1")}, result.CareContexts)
	})

	s.Run("linked requester gets ConsentManagerUserId and only new contexts", func() {
		s.expectRecorded("T-2")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), "cm-user@sbx").Return([]models.LinkedAccount{
			{RequesterID: "cm-user@sbx", PatientReferenceNumber: "REF-1", CareContexts: []string{"CC-1"}},
		}, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").
			Return([]models.CareContext{cc("CC-1"), cc("CC-2")}, nil)

		result, err := s.service.Discover(s.ctx, query("T-2"))
		s.Require().NoError(err)
		s.Equal([]models.CareContext{cc("CC-2")}, result.CareContexts)
		s.Equal([]models.MatchType{models.MatchMobile, models.MatchConsentManagerUserID}, result.MatchedBy)
	})

	s.Run("every context already disclosed yields an empty list", func() {
		s.expectRecorded("T-3")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), "cm-user@sbx").Return([]models.LinkedAccount{
			{PatientReferenceNumber: "REF-1", CareContexts: []string{"CC-1"}},
		}, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return([]models.CareContext{cc("CC-1")}, nil)

		result, err := s.service.Discover(s.ctx, query("T-3"))
		s.Require().NoError(err)
		s.NotNil(result.CareContexts)
		s.Empty(result.CareContexts)
	})

	s.Run("tags equal exactly the attributes that matched", func() {
		q := query("T-4")
		q.Unverified = []models.Identifier{{Type: models.IdentifierMR, Value: "REF-1"}}
		q.Demographics = models.Demographics{Name: "Asha", Gender: models.GenderMale, YearOfBirth: 1990}

		s.expectRecorded("T-4")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, nil)

		result, err := s.service.Discover(s.ctx, q)
		s.Require().NoError(err)
		s.ElementsMatch([]models.MatchType{models.MatchMobile, models.MatchName, models.MatchMr}, result.MatchedBy)
		s.NotNil(result.CareContexts)
	})

	s.Run("a single gated candidate with no scored attribute is still a match", func() {
		q := query("T-5")
		q.Verified = []models.Identifier{{Type: models.IdentifierHealthID, Value: "asha@sbx"}}
		p := patient("REF-1")
		p.Identifiers = []models.Identifier{{Type: models.IdentifierHealthID, Value: "asha@sbx"}}

		s.expectRecorded("T-5")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{p}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, nil)

		result, err := s.service.Discover(s.ctx, q)
		s.Require().NoError(err)
		s.NotNil(result.MatchedBy)
		s.Empty(result.MatchedBy)
	})

	s.Run("duplicate records of one patient are not ambiguous", func() {
		s.expectRecorded("T-6")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return([]models.CandidatePatient{patient("REF-1"), patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, nil)

		result, err := s.service.Discover(s.ctx, query("T-6"))
		s.Require().NoError(err)
		s.Equal("REF-1", result.ReferenceNumber)
	})
}

// =============================================================================
// Discovery errors
// =============================================================================

func (s *ServiceSuite) TestDiscover_NoPatientFound() {
	s.Run("no verified identifiers and no candidates", func() {
		q := query("T-10")
		q.Verified = nil
		q.Demographics = models.Demographics{Name: "Asha"}
		s.expectRecorded("T-10")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil)

		result, err := s.service.Discover(s.ctx, q)
		s.Nil(result)
		s.assertCode(err, dErrors.CodeNoPatientFound)
		s.Equal(models.MsgNoPatientFound, dErrors.MessageOf(err))
	})

	s.Run("verified identifier matches nobody even though demographics do", func() {
		q := query("T-11")
		q.Verified = []models.Identifier{mobile("0000000000")}
		q.Unverified = []models.Identifier{{Type: models.IdentifierMR, Value: "REF-1"}}
		q.Demographics = models.Demographics{Name: "Asha", Gender: models.GenderFemale}
		s.expectRecorded("T-11")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)

		result, err := s.service.Discover(s.ctx, q)
		s.Nil(result)
		s.assertCode(err, dErrors.CodeNoPatientFound)
	})
}

func (s *ServiceSuite) TestDiscover_MultiplePatientsFound() {
	s.expectRecorded("T-20")
	s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]models.CandidatePatient{patient("REF-1"), patient("REF-2")}, nil)

	result, err := s.service.Discover(s.ctx, query("T-20"))
	s.Nil(result)
	s.assertCode(err, dErrors.CodeMultiplePatientsFound)
	s.Equal(models.MsgMultiplePatientsFound, dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestDiscover_Duplicate() {
	s.Run("recorded transaction id short-circuits matching", func() {
		s.requests.EXPECT().TryRecord(gomock.Any(), gomock.Any()).Return(false, nil)

		result, err := s.service.Discover(s.ctx, query("T-30"))
		s.Nil(result)
		s.assertCode(err, dErrors.CodeDuplicateDiscoveryRequest)
		s.Equal(models.MsgDuplicateDiscoveryRequest, dErrors.MessageOf(err))
	})

	s.Run("second call with T-1 is a duplicate and the first result stands", func() {
		svc := s.newService(request.NewInMemory())
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return([]models.CareContext{cc("CC-1")}, nil)

		first, err := svc.Discover(s.ctx, query("T-1"))
		s.Require().NoError(err)

		second, err := svc.Discover(s.ctx, query("T-1"))
		s.Nil(second)
		s.assertCode(err, dErrors.CodeDuplicateDiscoveryRequest)

		s.Equal("REF-1", first.ReferenceNumber)
		s.Equal([]models.CareContext{cc("CC-1")}, first.CareContexts)
	})

	s.Run("a failed first attempt still makes the id a duplicate", func() {
		svc := s.newService(request.NewInMemory())
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("openmrs down"))

		_, err := svc.Discover(s.ctx, query("T-31"))
		s.assertCode(err, dErrors.CodeInternal)

		_, err = svc.Discover(s.ctx, query("T-31"))
		s.assertCode(err, dErrors.CodeDuplicateDiscoveryRequest)
	})
}

func (s *ServiceSuite) TestDiscover_ConcurrentSameTransaction() {
	svc := s.newService(request.NewInMemory())
	s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil).Times(1)
	s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, nil).Times(1)

	const goroutines = 20
	var wg sync.WaitGroup
	var matched, duplicates atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Discover(s.ctx, query("T-race"))
			switch {
			case err == nil && result != nil:
				matched.Add(1)
			case dErrors.HasCode(err, dErrors.CodeDuplicateDiscoveryRequest):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), matched.Load(), "exactly one submission proceeds past the gate")
	s.Equal(int32(goroutines-1), duplicates.Load())
}

// =============================================================================
// Collaborator failures
// =============================================================================

func (s *ServiceSuite) TestDiscover_CollaboratorFailures() {
	s.Run("dedup store failure", func() {
		s.requests.EXPECT().TryRecord(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

		result, err := s.service.Discover(s.ctx, query("T-40"))
		s.Nil(result)
		s.assertCode(err, dErrors.CodeInternal)
		s.Equal(models.MsgServerInternalError, dErrors.MessageOf(err))
	})

	s.Run("lookup failure", func() {
		s.expectRecorded("T-41")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("openmrs down"))

		result, err := s.service.Discover(s.ctx, query("T-41"))
		s.Nil(result)
		s.assertCode(err, dErrors.CodeInternal)
	})

	s.Run("linkage failure yields no partial result", func() {
		s.expectRecorded("T-42")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		result, err := s.service.Discover(s.ctx, query("T-42"))
		s.Nil(result)
		s.assertCode(err, dErrors.CodeInternal)
	})

	s.Run("care context failure", func() {
		s.expectRecorded("T-43")
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
		s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
		s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, errors.New("timeout"))

		result, err := s.service.Discover(s.ctx, query("T-43"))
		s.Nil(result)
		s.assertCode(err, dErrors.CodeInternal)
	})
}

// =============================================================================
// Audit trail
// =============================================================================

func (s *ServiceSuite) TestDiscover_EmitsAuditEvents() {
	s.auditStore.Clear()

	s.requests.EXPECT().TryRecord(gomock.Any(), gomock.Any()).Return(false, nil)
	_, _ = s.service.Discover(s.ctx, query("T-50"))

	s.expectRecorded("T-51")
	s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{patient("REF-1")}, nil)
	s.links.EXPECT().GetLinkedAccounts(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.careContexts.EXPECT().GetCareContexts(gomock.Any(), "REF-1").Return(nil, nil)
	_, err := s.service.Discover(s.ctx, query("T-51"))
	s.Require().NoError(err)

	events, err := s.auditStore.ListBySubject(s.ctx, "cm-user@sbx")
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Equal(string(audit.EventDiscoveryDuplicate), events[0].Action)
	s.Equal(models.GatewayDuplicateDiscoveryRequest, events[0].Decision)
	s.Equal(audit.CategorySecurity, events[0].Category)

	s.Equal(string(audit.EventDiscoveryMatched), events[1].Action)
	s.Equal("REF-1", events[1].PatientReference)
	s.Equal("T-51", events[1].TransactionID)
	s.Equal("R-T-51", events[1].RequestID)
}
