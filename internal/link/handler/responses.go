package handler

import (
	"time"

	"hipservice/internal/link/service"
)

// AddContextsResponse is the gateway add-contexts request the caller forwards.
type AddContextsResponse struct {
	RequestID string       `json:"requestId"`
	Timestamp string       `json:"timestamp"`
	Link      LinkResponse `json:"link"`
}

type LinkResponse struct {
	AccessToken string          `json:"accessToken"`
	Patient     PatientResponse `json:"patient"`
}

type PatientResponse struct {
	ReferenceNumber string                `json:"referenceNumber"`
	Display         string                `json:"display"`
	CareContexts    []CareContextResponse `json:"careContexts"`
}

type CareContextResponse struct {
	ReferenceNumber string `json:"referenceNumber"`
	Display         string `json:"display"`
}

func fromLink(link *service.AddContextsLink) AddContextsResponse {
	careContexts := make([]CareContextResponse, 0, len(link.CareContexts))
	for _, cc := range link.CareContexts {
		careContexts = append(careContexts, CareContextResponse{ReferenceNumber: cc.ReferenceNumber, Display: cc.Display})
	}
	return AddContextsResponse{
		RequestID: link.RequestID,
		Timestamp: link.Timestamp.Format(time.RFC3339Nano),
		Link: LinkResponse{
			AccessToken: link.AccessToken,
			Patient: PatientResponse{
				ReferenceNumber: link.ReferenceNumber,
				Display:         link.Display,
				CareContexts:    careContexts,
			},
		},
	}
}
