package models

import "time"

// DiscoveryQuery is the immutable input of one discovery attempt.
// TransactionID is unique per attempt and is processed at most once.
type DiscoveryQuery struct {
	RequesterID   string
	TransactionID string
	RequestID     string
	Timestamp     time.Time
	Verified      []Identifier
	Unverified    []Identifier
	Demographics  Demographics
}

// DiscoveryRequest is the durable record of an attempt, keyed by TransactionID.
type DiscoveryRequest struct {
	TransactionID string
	RequesterID   string
	RequestID     string
	RequestedAt   time.Time
}

// MatchResult is the single positive outcome of Discover.
type MatchResult struct {
	ReferenceNumber string
	Display         string
	// CareContexts is never nil; an empty slice means nothing new to disclose.
	CareContexts []CareContext
	// MatchedBy is in canonical order without duplicates.
	MatchedBy []MatchType
}
