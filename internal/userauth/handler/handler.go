// Package handler receives the gateway's user-auth callbacks.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hipservice/pkg/platform/httputil"
	"hipservice/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for the auth handshake operations.
type Service interface {
	OnAuthInit(ctx context.Context, healthID, transactionID string) error
	OnAuthConfirm(ctx context.Context, healthID, accessToken string) error
}

// Handler wires the user-auth callbacks to the userauth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a user-auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the callback endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v0.5/users/auth/on-init", h.HandleOnInit)
	r.Post("/v0.5/users/auth/on-confirm", h.HandleOnConfirm)
}

// HandleOnInit handles POST /v0.5/users/auth/on-init requests.
func (h *Handler) HandleOnInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OnInitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.OnAuthInit(ctx, req.Auth.Patient.ID, req.Auth.TransactionID); err != nil {
		h.logger.WarnContext(ctx, "auth on-init rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleOnConfirm handles POST /v0.5/users/auth/on-confirm requests.
func (h *Handler) HandleOnConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OnConfirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.OnAuthConfirm(ctx, req.Auth.Patient.ID, req.Auth.AccessToken); err != nil {
		h.logger.WarnContext(ctx, "auth on-confirm rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
