package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hipservice/pkg/requestcontext"
)

// GatewayValidator validates bearer tokens minted for the consent-manager gateway.
type GatewayValidator interface {
	ValidateToken(tokenString string) (*GatewayClaims, error)
}

// GatewayClaims represents the claims handlers may rely on.
type GatewayClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// HMACValidator checks HS256 signatures with a shared key and requires exp.
type HMACValidator struct {
	key    []byte
	parser *jwt.Parser
}

func NewHMACValidator(key []byte) *HMACValidator {
	return &HMACValidator{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*GatewayClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("validate gateway token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("validate gateway token: missing sub")
	}
	return &GatewayClaims{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// writeUnauthorized writes the generic 401 body.
func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"unauthorized","error_description":"%s"}`, desc))
}

// RequireGatewayToken rejects requests without a valid gateway bearer token
// and stores the token subject in the context. A nil validator disables the
// check, which is only meant for local development.
func RequireGatewayToken(validator GatewayValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithGatewaySubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
