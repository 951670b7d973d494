package models

import (
	dErrors "hipservice/pkg/domain-errors"
)

// Gateway-facing error codes and messages.
const (
	GatewayDuplicateDiscoveryRequest = "DuplicateDiscoveryRequest"
	GatewayNoPatientFound            = "NoPatientFound"
	GatewayMultiplePatientsFound     = "MultiplePatientsFound"
	GatewayServerInternalError       = "ServerInternalError"

	MsgDuplicateDiscoveryRequest = "Discovery Request already exists"
	MsgNoPatientFound            = "No patient found"
	MsgMultiplePatientsFound     = "Multiple patients found"
	MsgServerInternalError       = "Server internal error"
)

func ErrDuplicateDiscoveryRequest() error {
	return dErrors.New(dErrors.CodeDuplicateDiscoveryRequest, MsgDuplicateDiscoveryRequest)
}

func ErrNoPatientFound() error {
	return dErrors.New(dErrors.CodeNoPatientFound, MsgNoPatientFound)
}

func ErrMultiplePatientsFound() error {
	return dErrors.New(dErrors.CodeMultiplePatientsFound, MsgMultiplePatientsFound)
}

// ErrServerInternal keeps cause for logs; callers only see the code and message.
func ErrServerInternal(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeInternal, MsgServerInternalError)
}

// GatewayError is the caller-facing view of a discovery error.
type GatewayError struct {
	Code    string
	Message string
}

// ToGatewayError maps any error to the closed discovery taxonomy. Errors outside
// it are reported as ServerInternalError.
func ToGatewayError(err error) GatewayError {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeDuplicateDiscoveryRequest:
		return GatewayError{Code: GatewayDuplicateDiscoveryRequest, Message: MsgDuplicateDiscoveryRequest}
	case dErrors.CodeNoPatientFound:
		return GatewayError{Code: GatewayNoPatientFound, Message: MsgNoPatientFound}
	case dErrors.CodeMultiplePatientsFound:
		return GatewayError{Code: GatewayMultiplePatientsFound, Message: MsgMultiplePatientsFound}
	default:
		return GatewayError{Code: GatewayServerInternalError, Message: MsgServerInternalError}
	}
}
