package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hipservice/internal/discovery/models"
	"hipservice/internal/discovery/ports/mocks"
)

type MatcherSuite struct {
	suite.Suite
	ctx    context.Context
	lookup *mocks.MockCandidateLookup
	m      *Matcher
}

func (s *MatcherSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.lookup = mocks.NewMockCandidateLookup(ctrl)
	s.m = New(s.lookup)
	s.ctx = context.Background()
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func mobile(v string) models.Identifier {
	return models.Identifier{Type: models.IdentifierMobile, Value: v}
}
func mr(v string) models.Identifier { return models.Identifier{Type: models.IdentifierMR, Value: v} }

func asha() models.CandidatePatient {
	return models.CandidatePatient{
		ReferenceNumber: "REF-1",
		Name:            "Asha",
		Gender:          models.GenderFemale,
		YearOfBirth:     1990,
		PhoneNumber:     "9990001111",
	}
}

// =============================================================================
// Search terms
// =============================================================================

func (s *MatcherSuite) TestSearchTerms() {
	s.Run("only supplied fields are sent", func() {
		s.lookup.EXPECT().Search(gomock.Any(), models.SearchTerms{
			Identifiers: []models.Identifier{mobile("9990001111")},
		}).Return(nil, nil)

		_, err := s.m.Match(s.ctx, []models.Identifier{mobile("9990001111")}, nil, models.Demographics{})
		s.Require().NoError(err)
	})

	s.Run("demographics and both identifier lists are combined", func() {
		s.lookup.EXPECT().Search(gomock.Any(), models.SearchTerms{
			Name:        "Asha",
			Gender:      models.GenderFemale,
			YearOfBirth: 1990,
			Identifiers: []models.Identifier{mobile("9990001111"), mr("REF-1")},
		}).Return(nil, nil)

		_, err := s.m.Match(s.ctx,
			[]models.Identifier{mobile("9990001111")},
			[]models.Identifier{mr("REF-1"), mr("")},
			models.Demographics{Name: "Asha", Gender: models.GenderFemale, YearOfBirth: 1990})
		s.Require().NoError(err)
	})

	s.Run("lookup failure is returned", func() {
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("openmrs down"))

		got, err := s.m.Match(s.ctx, nil, nil, models.Demographics{Name: "Asha"})
		s.Require().Error(err)
		s.Nil(got)
	})
}

// =============================================================================
// Verified gate
// =============================================================================

func (s *MatcherSuite) TestVerifiedGate() {
	s.Run("candidate matching a verified mobile survives", func() {
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha()}, nil)

		got, err := s.m.Match(s.ctx, []models.Identifier{mobile("9990001111")}, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal([]models.MatchType{models.MatchMobile}, got[0].MatchedBy.Ordered())
	})

	s.Run("no verified match yields no candidates even when demographics match", func() {
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha()}, nil)

		got, err := s.m.Match(s.ctx,
			[]models.Identifier{mobile("0000000000")},
			[]models.Identifier{mr("REF-1")},
			models.Demographics{Name: "Asha", Gender: models.GenderFemale})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("identifier type must match as well as value", func() {
		p := asha()
		p.Identifiers = []models.Identifier{{Type: models.IdentifierHealthID, Value: "asha@sbx"}}
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{p}, nil)

		got, err := s.m.Match(s.ctx,
			[]models.Identifier{{Type: models.IdentifierNDHMHealthNumber, Value: "asha@sbx"}}, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("source identifiers satisfy non-mobile non-mr types", func() {
		p := asha()
		p.Identifiers = []models.Identifier{{Type: models.IdentifierHealthID, Value: "asha@sbx"}}
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{p}, nil)

		got, err := s.m.Match(s.ctx,
			[]models.Identifier{{Type: models.IdentifierHealthID, Value: "asha@sbx"}}, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Empty(got[0].MatchedBy.Ordered(), "gate match alone carries no tag")
	})

	s.Run("without verified identifiers every record is eligible", func() {
		other := asha()
		other.ReferenceNumber = "REF-2"
		other.PhoneNumber = "9990002222"
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha(), other}, nil)

		got, err := s.m.Match(s.ctx, nil, nil, models.Demographics{Name: "Asha"})
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

// =============================================================================
// Scoring
// =============================================================================

func (s *MatcherSuite) TestScoring() {
	s.Run("tags equal exactly the attributes that matched", func() {
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha()}, nil)

		got, err := s.m.Match(s.ctx,
			[]models.Identifier{mobile("9990001111")},
			[]models.Identifier{mr("REF-1")},
			models.Demographics{Name: "Asha", Gender: models.GenderMale})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.ElementsMatch([]models.MatchType{models.MatchMobile, models.MatchMr, models.MatchName}, got[0].MatchedBy.Ordered())
	})

	s.Run("name comparison is case sensitive", func() {
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha()}, nil)

		got, err := s.m.Match(s.ctx, nil, nil, models.Demographics{Name: "asha"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.False(got[0].MatchedBy.Has(models.MatchName))
	})

	s.Run("name comparison keeps internal whitespace significant", func() {
		record := asha()
		record.Name = "Asha  Rao"
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{record}, nil)

		got, err := s.m.Match(s.ctx,
			[]models.Identifier{mobile("9990001111")}, nil,
			models.Demographics{Name: "Asha Rao"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal([]models.MatchType{models.MatchMobile}, got[0].MatchedBy.Ordered())
	})

	s.Run("custom strategy replaces exact scoring", func() {
		m := New(s.lookup, WithStrategy(strategyFunc(func(models.CandidatePatient, []models.Identifier, models.Demographics) models.MatchSet {
			return models.MatchSet{models.MatchGender: {}}
		})))
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha()}, nil)

		got, err := m.Match(s.ctx, nil, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal([]models.MatchType{models.MatchGender}, got[0].MatchedBy.Ordered())
	})
}

// =============================================================================
// Deduplication
// =============================================================================

func (s *MatcherSuite) TestDeduplication() {
	s.Run("records with the same reference number collapse and union tags", func() {
		first := asha()
		second := asha()
		second.PhoneNumber = ""
		second.Gender = models.GenderFemale
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{first, second}, nil)

		got, err := s.m.Match(s.ctx, nil, []models.Identifier{mobile("9990001111")}, models.Demographics{Gender: models.GenderFemale})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal([]models.MatchType{models.MatchMobile, models.MatchGender}, got[0].MatchedBy.Ordered())
	})

	s.Run("distinct reference numbers sharing a verified identifier stay distinct", func() {
		other := asha()
		other.ReferenceNumber = "REF-2"
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{asha(), other}, nil)

		got, err := s.m.Match(s.ctx, []models.Identifier{mobile("9990001111")}, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("REF-1", got[0].Patient.ReferenceNumber)
		s.Equal("REF-2", got[1].Patient.ReferenceNumber)
	})

	s.Run("records without a reference number are not merged", func() {
		a := asha()
		a.ReferenceNumber = ""
		b := asha()
		b.ReferenceNumber = ""
		s.lookup.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]models.CandidatePatient{a, b}, nil)

		got, err := s.m.Match(s.ctx, nil, nil, models.Demographics{})
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

type strategyFunc func(models.CandidatePatient, []models.Identifier, models.Demographics) models.MatchSet

func (f strategyFunc) Score(p models.CandidatePatient, ids []models.Identifier, d models.Demographics) models.MatchSet {
	return f(p, ids, d)
}
