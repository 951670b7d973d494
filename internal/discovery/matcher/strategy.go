package matcher

import (
	"hipservice/internal/discovery/models"
)

// Strategy scores a candidate that already passed the verified gate.
// Implementations must be safe for concurrent use.
type Strategy interface {
	Score(patient models.CandidatePatient, identifiers []models.Identifier, demographics models.Demographics) models.MatchSet
}

// ExactStrategy tags attributes that are exactly equal to the query. Names are
// compared byte for byte, so case and whitespace are significant.
type ExactStrategy struct{}

func (ExactStrategy) Score(patient models.CandidatePatient, identifiers []models.Identifier, demographics models.Demographics) models.MatchSet {
	tags := models.MatchSet{}
	for _, id := range identifiers {
		switch id.Type {
		case models.IdentifierMobile:
			if id.Value != "" && id.Value == patient.PhoneNumber {
				tags.Add(models.MatchMobile)
			}
		case models.IdentifierMR:
			if id.Value != "" && id.Value == patient.ReferenceNumber {
				tags.Add(models.MatchMr)
			}
		}
	}
	if demographics.Name != "" && demographics.Name == patient.Name {
		tags.Add(models.MatchName)
	}
	if demographics.Gender != "" && demographics.Gender == patient.Gender {
		tags.Add(models.MatchGender)
	}
	return tags
}

// satisfies reports whether patient carries id exactly. MOBILE is checked
// against the phone number, MR against the reference number, anything else
// against the typed identifiers the source exposes.
func satisfies(patient models.CandidatePatient, id models.Identifier) bool {
	if id.Value == "" {
		return false
	}
	switch id.Type {
	case models.IdentifierMobile:
		return id.Value == patient.PhoneNumber
	case models.IdentifierMR:
		return id.Value == patient.ReferenceNumber
	}
	for _, own := range patient.Identifiers {
		if own.Equal(id) {
			return true
		}
	}
	return false
}
