package handler

import (
	"strings"
	"time"

	"hipservice/internal/discovery/models"
	dErrors "hipservice/pkg/domain-errors"
)

// gatewayTimestampLayouts are the accepted request timestamp forms. Gateways
// send local date-times without a zone as often as RFC 3339.
var gatewayTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// DiscoverRequest is the HTTP request body for POST /v0.5/care-contexts/discover.
type DiscoverRequest struct {
	RequestID     string         `json:"requestId"`
	Timestamp     string         `json:"timestamp"`
	TransactionID string         `json:"transactionId"`
	Patient       PatientRequest `json:"patient"`

	// Parsed values (populated by Validate)
	parsedTimestamp  time.Time
	parsedVerified   []models.Identifier
	parsedUnverified []models.Identifier
	parsedGender     models.Gender
}

// PatientRequest describes the person the consent manager is looking for.
type PatientRequest struct {
	ID                    string              `json:"id"`
	VerifiedIdentifiers   []IdentifierRequest `json:"verifiedIdentifiers"`
	UnverifiedIdentifiers []IdentifierRequest `json:"unverifiedIdentifiers"`
	Name                  string              `json:"name"`
	Gender                string              `json:"gender"`
	YearOfBirth           int                 `json:"yearOfBirth"`
}

type IdentifierRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Normalize trims every string field.
func (r *DiscoverRequest) Normalize() {
	if r == nil {
		return
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.Timestamp = strings.TrimSpace(r.Timestamp)
	r.TransactionID = strings.TrimSpace(r.TransactionID)
	r.Patient.ID = strings.TrimSpace(r.Patient.ID)
	r.Patient.Name = strings.TrimSpace(r.Patient.Name)
	r.Patient.Gender = strings.TrimSpace(r.Patient.Gender)
	for i := range r.Patient.VerifiedIdentifiers {
		r.Patient.VerifiedIdentifiers[i].normalize()
	}
	for i := range r.Patient.UnverifiedIdentifiers {
		r.Patient.UnverifiedIdentifiers[i].normalize()
	}
}

func (r *IdentifierRequest) normalize() {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Value = strings.TrimSpace(r.Value)
}

// Validate validates and parses the request.
// Implements the Preparable interface for httputil.DecodeAndPrepare.
func (r *DiscoverRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.TransactionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "transactionId is required")
	}
	if r.Patient.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "patient.id is required")
	}
	if r.Patient.YearOfBirth < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "patient.yearOfBirth must not be negative")
	}

	if r.Timestamp != "" {
		ts, err := parseGatewayTimestamp(r.Timestamp)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "timestamp is not a valid date-time")
		}
		r.parsedTimestamp = ts
	}

	gender, err := models.ParseGender(r.Patient.Gender)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "patient.gender must be one of M, F, O")
	}
	r.parsedGender = gender

	if r.parsedVerified, err = parseIdentifiers(r.Patient.VerifiedIdentifiers); err != nil {
		return err
	}
	if r.parsedUnverified, err = parseIdentifiers(r.Patient.UnverifiedIdentifiers); err != nil {
		return err
	}
	return nil
}

// Query converts the validated request into a discovery query. The patient id
// is the consent-manager user id of the requester.
func (r *DiscoverRequest) Query() models.DiscoveryQuery {
	return models.DiscoveryQuery{
		RequesterID:   r.Patient.ID,
		TransactionID: r.TransactionID,
		RequestID:     r.RequestID,
		Timestamp:     r.parsedTimestamp,
		Verified:      r.parsedVerified,
		Unverified:    r.parsedUnverified,
		Demographics: models.Demographics{
			Name:        r.Patient.Name,
			Gender:      r.parsedGender,
			YearOfBirth: r.Patient.YearOfBirth,
		},
	}
}

func parseIdentifiers(in []IdentifierRequest) ([]models.Identifier, error) {
	out := make([]models.Identifier, 0, len(in))
	for _, id := range in {
		t, err := models.ParseIdentifierType(id.Type)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "unknown identifier type "+id.Type)
		}
		out = append(out, models.Identifier{Type: t, Value: id.Value})
	}
	return out, nil
}

func parseGatewayTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range gatewayTimestampLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, err
}
