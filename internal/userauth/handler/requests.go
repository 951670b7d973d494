package handler

import (
	"strings"

	dErrors "hipservice/pkg/domain-errors"
)

// OnInitRequest is the gateway callback body for POST /v0.5/users/auth/on-init.
type OnInitRequest struct {
	RequestID string     `json:"requestId"`
	Timestamp string     `json:"timestamp"`
	Auth      OnInitAuth `json:"auth"`
	Resp      Resp       `json:"resp"`
}

type OnInitAuth struct {
	TransactionID string         `json:"transactionId"`
	Mode          string         `json:"mode"`
	Patient       PatientRequest `json:"patient"`
}

// OnConfirmRequest is the gateway callback body for POST /v0.5/users/auth/on-confirm.
type OnConfirmRequest struct {
	RequestID string        `json:"requestId"`
	Timestamp string        `json:"timestamp"`
	Auth      OnConfirmAuth `json:"auth"`
	Resp      Resp          `json:"resp"`
}

type OnConfirmAuth struct {
	AccessToken string         `json:"accessToken"`
	Patient     PatientRequest `json:"patient"`
}

type PatientRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	YearOfBirth int    `json:"yearOfBirth,omitempty"`
}

type Resp struct {
	RequestID string `json:"requestId"`
}

func (r *OnInitRequest) Normalize() {
	if r == nil {
		return
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.Auth.TransactionID = strings.TrimSpace(r.Auth.TransactionID)
	r.Auth.Patient.ID = strings.TrimSpace(r.Auth.Patient.ID)
}

func (r *OnInitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Auth.Patient.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "auth.patient.id is required")
	}
	if r.Auth.TransactionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "auth.transactionId is required")
	}
	return nil
}

func (r *OnConfirmRequest) Normalize() {
	if r == nil {
		return
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.Auth.AccessToken = strings.TrimSpace(r.Auth.AccessToken)
	r.Auth.Patient.ID = strings.TrimSpace(r.Auth.Patient.ID)
}

func (r *OnConfirmRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Auth.Patient.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "auth.patient.id is required")
	}
	if r.Auth.AccessToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "auth.accessToken is required")
	}
	return nil
}
