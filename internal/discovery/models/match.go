package models

import "slices"

// MatchType names the patient attribute that produced a match.
type MatchType string

const (
	MatchMobile               MatchType = "Mobile"
	MatchName                 MatchType = "Name"
	MatchGender               MatchType = "Gender"
	MatchMr                   MatchType = "Mr"
	MatchConsentManagerUserID MatchType = "ConsentManagerUserId"
)

// canonicalMatchOrder is the order MatchedBy is reported in.
var canonicalMatchOrder = []MatchType{
	MatchMobile,
	MatchName,
	MatchGender,
	MatchMr,
	MatchConsentManagerUserID,
}

// MatchSet is an unordered set of match tags.
type MatchSet map[MatchType]struct{}

// Add inserts tags into the set.
func (s MatchSet) Add(tags ...MatchType) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

// Has reports membership.
func (s MatchSet) Has(t MatchType) bool {
	_, ok := s[t]
	return ok
}

// Union adds every tag of other into s.
func (s MatchSet) Union(other MatchSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Ordered returns the tags in canonical order. Unknown tags sort last,
// alphabetically. The result is never nil.
func (s MatchSet) Ordered() []MatchType {
	out := make([]MatchType, 0, len(s))
	for _, t := range canonicalMatchOrder {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	if len(out) == len(s) {
		return out
	}
	var extra []MatchType
	for t := range s {
		if !slices.Contains(canonicalMatchOrder, t) {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
