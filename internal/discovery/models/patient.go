package models

import "time"

// CareContext is one disclosable clinical episode. Identity is ReferenceNumber;
// Display is presentational.
type CareContext struct {
	ReferenceNumber string
	Display         string
}

// CandidatePatient is a record surfaced by the clinical record source. It is
// read-only and lives for one request.
type CandidatePatient struct {
	ReferenceNumber string
	Name            string
	Gender          Gender
	YearOfBirth     int
	PhoneNumber     string
	// Identifiers holds the extra typed identifiers the source exposes
	// (health numbers, health ids).
	Identifiers  []Identifier
	CareContexts []CareContext
}

// ScoredCandidate is a candidate that survived the verified gate together
// with the attributes that matched exactly.
type ScoredCandidate struct {
	Patient   CandidatePatient
	MatchedBy MatchSet
}

// SearchTerms is the query sent to the record source. Only supplied fields
// are set; zero values are omitted from the search.
type SearchTerms struct {
	Name        string
	Gender      Gender
	YearOfBirth int
	Identifiers []Identifier
}

// LinkedAccount is a link a separate workflow established between a requester
// and a patient, with the care contexts already disclosed over it.
type LinkedAccount struct {
	RequesterID            string
	PatientReferenceNumber string
	LinkReferenceNumber    string
	PatientUUID            string
	CareContexts           []string
	DateCreated            time.Time
}

// Reconciliation is the linkage outcome for one patient.
type Reconciliation struct {
	// CareContexts is never nil.
	CareContexts []CareContext
	// Linked is true when the requester already holds a link to the patient.
	Linked bool
}
