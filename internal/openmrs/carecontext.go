package openmrs

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hipservice/internal/discovery/models"
)

const careContextPath = "/ws/rest/v1/hip/careContext"

type careContextRow struct {
	CareContextReference string `json:"careContextReference"`
	CareContextName      string `json:"careContextName"`
}

// CareContextRepository lists a patient's care contexts from the OpenMRS HIP
// module. An unknown patient has no care contexts.
type CareContextRepository struct {
	client *Client
	tracer trace.Tracer
}

func NewCareContextRepository(client *Client) *CareContextRepository {
	return &CareContextRepository{client: client, tracer: otel.Tracer("hipservice/internal/openmrs")}
}

func (r *CareContextRepository) GetCareContexts(ctx context.Context, referenceNumber string) ([]models.CareContext, error) {
	ctx, span := r.tracer.Start(ctx, "openmrs.CareContexts")
	defer span.End()

	var rows []careContextRow
	err := r.client.get(ctx, "care_contexts", careContextPath,
		map[string]string{"patientReferenceNumber": referenceNumber}, &rows)
	if errors.Is(err, errNotFound) {
		return []models.CareContext{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "care context lookup failed")
		return nil, err
	}

	out := make([]models.CareContext, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CareContext{ReferenceNumber: row.CareContextReference, Display: row.CareContextName})
	}
	span.SetAttributes(attribute.Int("openmrs.care_contexts", len(out)))
	return out, nil
}
