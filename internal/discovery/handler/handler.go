// Package handler exposes patient discovery to the consent-manager gateway.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hipservice/internal/discovery/models"
	"hipservice/pkg/platform/httputil"
	"hipservice/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for discovery operations.
type Service interface {
	Discover(ctx context.Context, q models.DiscoveryQuery) (*models.MatchResult, error)
}

// Handler wires discovery endpoints to the discovery service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a discovery handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts discovery endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v0.5/care-contexts/discover", h.HandleDiscover)
}

// HandleDiscover handles POST /v0.5/care-contexts/discover requests.
func (h *Handler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DiscoverRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.RequestID == "" {
		req.RequestID = requestID
	}

	resp := newEnvelope(req, requestID, requestcontext.Now(ctx))
	result, err := h.service.Discover(ctx, req.Query())
	if err != nil {
		gatewayErr := models.ToGatewayError(err)
		resp.Error = &ErrorResponse{Code: gatewayErr.Code, Message: gatewayErr.Message}
		httputil.WriteJSON(w, statusFor(gatewayErr.Code), resp)
		return
	}

	h.logger.InfoContext(ctx, "discovery answered",
		"request_id", requestID,
		"transaction_id", req.TransactionID,
		"patient_reference", result.ReferenceNumber,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	resp.Patient = FromResult(result)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func statusFor(gatewayCode string) int {
	switch gatewayCode {
	case models.GatewayDuplicateDiscoveryRequest, models.GatewayMultiplePatientsFound:
		return http.StatusConflict
	case models.GatewayNoPatientFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
