// Package matcher narrows record-source candidates to the ones a discovery
// query can claim, and records which attributes matched.
package matcher

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hipservice/internal/discovery/models"
	"hipservice/internal/discovery/ports"
)

// Matcher runs one lookup per query, applies the verified gate, scores the
// survivors and collapses duplicate records of the same patient.
type Matcher struct {
	lookup   ports.CandidateLookup
	strategy Strategy
	logger   *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Matcher)

// WithStrategy replaces the default ExactStrategy.
func WithStrategy(strategy Strategy) Option {
	return func(m *Matcher) {
		if strategy != nil {
			m.strategy = strategy
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

func New(lookup ports.CandidateLookup, opts ...Option) *Matcher {
	m := &Matcher{
		lookup:   lookup,
		strategy: ExactStrategy{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("hipservice/internal/discovery/matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the distinct candidates that survive narrowing, in lookup
// order. More than one result is ambiguity for the caller to report.
func (m *Matcher) Match(ctx context.Context, verified, unverified []models.Identifier, demographics models.Demographics) ([]models.ScoredCandidate, error) {
	ctx, span := m.tracer.Start(ctx, "matcher.Match")
	defer span.End()

	verified = present(verified)
	unverified = present(unverified)
	identifiers := append(append(make([]models.Identifier, 0, len(verified)+len(unverified)), verified...), unverified...)

	records, err := m.lookup.Search(ctx, searchTerms(identifiers, demographics))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate lookup failed")
		return nil, fmt.Errorf("candidate lookup: %w", err)
	}

	gated := records
	if len(verified) > 0 {
		gated = make([]models.CandidatePatient, 0, len(records))
		for _, record := range records {
			if satisfiesAny(record, verified) {
				gated = append(gated, record)
			}
		}
	}

	candidates := m.collapse(gated, identifiers, demographics)
	span.SetAttributes(
		attribute.Int("discovery.records", len(records)),
		attribute.Int("discovery.gated", len(gated)),
		attribute.Int("discovery.candidates", len(candidates)),
	)
	m.logger.DebugContext(ctx, "candidates narrowed",
		"records", len(records),
		"gated", len(gated),
		"candidates", len(candidates),
	)
	return candidates, nil
}

// collapse scores each record and merges records sharing a non-empty
// reference number. Records without one cannot be proven identical and stay
// separate.
func (m *Matcher) collapse(records []models.CandidatePatient, identifiers []models.Identifier, demographics models.Demographics) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, 0, len(records))
	index := make(map[string]int, len(records))
	for _, record := range records {
		tags := m.strategy.Score(record, identifiers, demographics)
		if tags == nil {
			tags = models.MatchSet{}
		}
		if ref := record.ReferenceNumber; ref != "" {
			if i, ok := index[ref]; ok {
				out[i].MatchedBy.Union(tags)
				continue
			}
			index[ref] = len(out)
		}
		out = append(out, models.ScoredCandidate{Patient: record, MatchedBy: tags})
	}
	return out
}

func searchTerms(identifiers []models.Identifier, demographics models.Demographics) models.SearchTerms {
	terms := models.SearchTerms{Identifiers: identifiers}
	if demographics.Name != "" {
		terms.Name = demographics.Name
	}
	if demographics.Gender != "" {
		terms.Gender = demographics.Gender
	}
	if demographics.YearOfBirth > 0 {
		terms.YearOfBirth = demographics.YearOfBirth
	}
	return terms
}

func satisfiesAny(patient models.CandidatePatient, verified []models.Identifier) bool {
	for _, id := range verified {
		if satisfies(patient, id) {
			return true
		}
	}
	return false
}

// present drops identifiers with no value; they carry no claim.
func present(ids []models.Identifier) []models.Identifier {
	out := make([]models.Identifier, 0, len(ids))
	for _, id := range ids {
		if id.Value != "" {
			out = append(out, id)
		}
	}
	return out
}
