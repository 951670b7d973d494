package openmrs

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hipservice/internal/discovery/models"
	pstrings "hipservice/pkg/platform/strings"
)

const patientSearchPath = "/ws/fhir2/R4/Patient"

// Identifier systems, matched against the FHIR identifier system or type text.
const (
	systemPatientIdentifier = "Patient Identifier"
	systemNationalID        = "National ID"
	systemHealthID          = "Health ID"
)

// bundle is the subset of a FHIR R4 searchset Bundle the lookup reads.
type bundle struct {
	Entry []struct {
		Resource fhirPatient `json:"resource"`
	} `json:"entry"`
}

type fhirPatient struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Identifier   []struct {
		System string `json:"system"`
		Type   struct {
			Text string `json:"text"`
		} `json:"type"`
		Value string `json:"value"`
	} `json:"identifier"`
	Name []struct {
		Text   string   `json:"text"`
		Family string   `json:"family"`
		Given  []string `json:"given"`
	} `json:"name"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
	Telecom   []struct {
		System string `json:"system"`
		Value  string `json:"value"`
	} `json:"telecom"`
}

// PatientLookup implements the discovery candidate lookup over the FHIR
// Patient search. It returns a superset; narrowing is left to the matcher.
type PatientLookup struct {
	client *Client
	tracer trace.Tracer
}

func NewPatientLookup(client *Client) *PatientLookup {
	return &PatientLookup{client: client, tracer: otel.Tracer("hipservice/internal/openmrs")}
}

func (l *PatientLookup) Search(ctx context.Context, terms models.SearchTerms) ([]models.CandidatePatient, error) {
	ctx, span := l.tracer.Start(ctx, "openmrs.PatientSearch")
	defer span.End()

	var result bundle
	err := l.client.get(ctx, "patient_search", patientSearchPath, searchQuery(terms), &result)
	if errors.Is(err, errNotFound) {
		return []models.CandidatePatient{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "patient search failed")
		return nil, err
	}

	out := make([]models.CandidatePatient, 0, len(result.Entry))
	for _, entry := range result.Entry {
		if rt := entry.Resource.ResourceType; rt != "" && rt != "Patient" {
			continue
		}
		out = append(out, toCandidate(entry.Resource))
	}
	span.SetAttributes(attribute.Int("openmrs.patients", len(out)))
	return out, nil
}

func searchQuery(terms models.SearchTerms) map[string]string {
	query := map[string]string{}
	if terms.Name != "" {
		query["name"] = terms.Name
	}
	if gender := toFHIRGender(terms.Gender); gender != "" {
		query["gender"] = gender
	}
	if terms.YearOfBirth > 0 {
		query["birthdate"] = strconv.Itoa(terms.YearOfBirth)
	}
	return query
}

func toCandidate(p fhirPatient) models.CandidatePatient {
	c := models.CandidatePatient{
		Name:        displayName(p),
		Gender:      fromFHIRGender(p.Gender),
		YearOfBirth: birthYear(p.BirthDate),
		Identifiers: []models.Identifier{},
	}
	for _, id := range p.Identifier {
		if id.Value == "" {
			continue
		}
		if c.ReferenceNumber == "" {
			c.ReferenceNumber = id.Value
		}
		system := id.System
		if system == "" {
			system = id.Type.Text
		}
		switch system {
		case systemPatientIdentifier:
			c.Identifiers = append(c.Identifiers, models.Identifier{Type: models.IdentifierMR, Value: id.Value})
		case systemNationalID:
			c.Identifiers = append(c.Identifiers, models.Identifier{Type: models.IdentifierNDHMHealthNumber, Value: id.Value})
		case systemHealthID:
			c.Identifiers = append(c.Identifiers, models.Identifier{Type: models.IdentifierHealthID, Value: id.Value})
		}
	}
	for _, t := range p.Telecom {
		if t.System == "phone" && t.Value != "" {
			c.PhoneNumber = t.Value
			break
		}
	}
	return c
}

func displayName(p fhirPatient) string {
	if len(p.Name) == 0 {
		return ""
	}
	n := p.Name[0]
	if n.Text != "" {
		return n.Text
	}
	return pstrings.JoinNonEmpty(" ", append(append([]string{}, n.Given...), n.Family)...)
}

func birthYear(birthDate string) int {
	if len(birthDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(birthDate[:4])
	if err != nil {
		return 0
	}
	return year
}

func toFHIRGender(g models.Gender) string {
	switch g {
	case models.GenderMale:
		return "male"
	case models.GenderFemale:
		return "female"
	case models.GenderOther:
		return "other"
	}
	return ""
}

func fromFHIRGender(g string) models.Gender {
	switch strings.ToLower(g) {
	case "male":
		return models.GenderMale
	case "female":
		return models.GenderFemale
	case "other":
		return models.GenderOther
	}
	return ""
}
