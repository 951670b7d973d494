package testutil

import (
	"net/http"
	"time"

	"hipservice/pkg/requestcontext"
)

// WithGatewaySubject marks the request as authenticated by the given gateway
// client, as RequireGatewayToken would.
func WithGatewaySubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithGatewaySubject(req.Context(), subject))
}

// WithRequestID sets the request id normally assigned by the RequestID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
