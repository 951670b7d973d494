package handler

import (
	"time"

	"hipservice/internal/discovery/models"
)

// DiscoverResponse is the HTTP response for POST /v0.5/care-contexts/discover.
// Exactly one of Patient or Error is set.
type DiscoverResponse struct {
	RequestID     string           `json:"requestId"`
	Timestamp     string           `json:"timestamp"`
	TransactionID string           `json:"transactionId"`
	Patient       *PatientResponse `json:"patient,omitempty"`
	Error         *ErrorResponse   `json:"error,omitempty"`
	Resp          RespEnvelope     `json:"resp"`
}

type PatientResponse struct {
	ReferenceNumber string                `json:"referenceNumber"`
	Display         string                `json:"display"`
	CareContexts    []CareContextResponse `json:"careContexts"`
	MatchedBy       []string              `json:"matchedBy"`
}

type CareContextResponse struct {
	ReferenceNumber string `json:"referenceNumber"`
	Display         string `json:"display"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespEnvelope echoes the id of the request being answered.
type RespEnvelope struct {
	RequestID string `json:"requestId"`
}

func newEnvelope(req *DiscoverRequest, requestID string, now time.Time) DiscoverResponse {
	return DiscoverResponse{
		RequestID:     requestID,
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		TransactionID: req.TransactionID,
		Resp:          RespEnvelope{RequestID: req.RequestID},
	}
}

// FromResult converts a match into a response patient.
func FromResult(result *models.MatchResult) *PatientResponse {
	contexts := make([]CareContextResponse, 0, len(result.CareContexts))
	for _, cc := range result.CareContexts {
		contexts = append(contexts, CareContextResponse{ReferenceNumber: cc.ReferenceNumber, Display: cc.Display})
	}
	matchedBy := make([]string, 0, len(result.MatchedBy))
	for _, m := range result.MatchedBy {
		matchedBy = append(matchedBy, string(m))
	}
	return &PatientResponse{
		ReferenceNumber: result.ReferenceNumber,
		Display:         result.Display,
		CareContexts:    contexts,
		MatchedBy:       matchedBy,
	}
}
