package handler

import (
	"strings"

	"hipservice/internal/discovery/models"
	"hipservice/internal/link/service"
	dErrors "hipservice/pkg/domain-errors"
)

// AddContextsRequest is the body of POST /v0.5/hip/add-contexts, sent by the
// clinical system when new care contexts exist for an already linked patient.
type AddContextsRequest struct {
	HealthID        string               `json:"healthId"`
	ReferenceNumber string               `json:"referenceNumber"`
	Display         string               `json:"display"`
	CareContexts    []CareContextRequest `json:"careContexts"`
}

type CareContextRequest struct {
	ReferenceNumber string `json:"referenceNumber"`
	Display         string `json:"display"`
}

func (r *AddContextsRequest) Normalize() {
	if r == nil {
		return
	}
	r.HealthID = strings.TrimSpace(r.HealthID)
	r.ReferenceNumber = strings.TrimSpace(r.ReferenceNumber)
	r.Display = strings.TrimSpace(r.Display)
	for i := range r.CareContexts {
		r.CareContexts[i].ReferenceNumber = strings.TrimSpace(r.CareContexts[i].ReferenceNumber)
	}
}

// Validate implements the Preparable interface for httputil.DecodeAndPrepare.
func (r *AddContextsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.HealthID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "healthId is required")
	}
	if r.ReferenceNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "referenceNumber is required")
	}
	if len(r.CareContexts) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "careContexts must not be empty")
	}
	for _, cc := range r.CareContexts {
		if cc.ReferenceNumber == "" {
			return dErrors.New(dErrors.CodeBadRequest, "careContexts[].referenceNumber is required")
		}
	}
	return nil
}

func (r *AddContextsRequest) toService() service.AddContextsRequest {
	careContexts := make([]models.CareContext, 0, len(r.CareContexts))
	for _, cc := range r.CareContexts {
		careContexts = append(careContexts, models.CareContext{ReferenceNumber: cc.ReferenceNumber, Display: cc.Display})
	}
	return service.AddContextsRequest{
		HealthID:        r.HealthID,
		ReferenceNumber: r.ReferenceNumber,
		Display:         r.Display,
		CareContexts:    careContexts,
	}
}
