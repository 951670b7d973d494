// Package userauth keeps the short-lived state of the gateway user
// authentication handshake: the transaction opened by auth/on-init and the
// access token delivered by auth/on-confirm, both keyed by health id.
package userauth

import (
	"context"
	"regexp"
	"strings"
	"time"

	dErrors "hipservice/pkg/domain-errors"
)

// healthIDPattern is the loose shape check the gateway applies to health ids.
var healthIDPattern = regexp.MustCompile(`\w+\S\w+@\w+`)

// Store holds handshake state with expiry. Missing or expired entries yield
// sentinel.ErrNotFound.
type Store interface {
	SaveTransaction(ctx context.Context, healthID, transactionID string, ttl time.Duration) error
	// TakeTransaction returns and removes the pending transaction atomically.
	TakeTransaction(ctx context.Context, healthID string) (string, error)
	SaveAccessToken(ctx context.Context, healthID, token string, ttl time.Duration) error
	AccessToken(ctx context.Context, healthID string) (string, error)
}

// IsValidHealthID reports whether healthID looks like user@suffix.
func IsValidHealthID(healthID string) bool {
	return healthIDPattern.MatchString(healthID)
}

// CMSuffix returns the consent-manager suffix of a valid health id, or "".
func CMSuffix(healthID string) string {
	if !IsValidHealthID(healthID) {
		return ""
	}
	return strings.Split(healthID, "@")[1]
}

func errInvalidHealthID() error {
	return dErrors.New(dErrors.CodeBadRequest, "HealthId is invalid")
}
