package models

import (
	"fmt"

	dErrors "hipservice/pkg/domain-errors"
)

// IdentifierType is the closed vocabulary of patient identifiers the gateway sends.
type IdentifierType string

const (
	IdentifierMobile           IdentifierType = "MOBILE"
	IdentifierMR               IdentifierType = "MR"
	IdentifierNDHMHealthNumber IdentifierType = "NDHM_HEALTH_NUMBER"
	IdentifierHealthID         IdentifierType = "HEALTH_ID"
)

// IsValid reports whether t belongs to the vocabulary.
func (t IdentifierType) IsValid() bool {
	switch t {
	case IdentifierMobile, IdentifierMR, IdentifierNDHMHealthNumber, IdentifierHealthID:
		return true
	}
	return false
}

// ParseIdentifierType validates a wire value.
func ParseIdentifierType(s string) (IdentifierType, error) {
	t := IdentifierType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported identifier type %q", s))
	}
	return t, nil
}

// Identifier is a typed identifier value. Two identifiers are equal only when
// both type and value match exactly.
type Identifier struct {
	Type  IdentifierType
	Value string
}

// Equal compares type and value exactly.
func (i Identifier) Equal(other Identifier) bool {
	return i.Type == other.Type && i.Value == other.Value
}

// Gender is the administrative gender carried in demographics.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// IsValid reports whether g is a known gender code.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParseGender validates a wire value. The empty string means "not supplied".
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return "", nil
	}
	g := Gender(s)
	if !g.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported gender %q", s))
	}
	return g, nil
}

// Demographics holds optional hints. Zero values mean "not supplied".
type Demographics struct {
	Name        string
	Gender      Gender
	YearOfBirth int
}
