// Package handler exposes the add-contexts linking call to the clinical system.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hipservice/internal/link/service"
	"hipservice/pkg/platform/httputil"
	"hipservice/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for linking operations.
type Service interface {
	AddContexts(ctx context.Context, req service.AddContextsRequest) (*service.AddContextsLink, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the linking endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v0.5/hip/add-contexts", h.HandleAddContexts)
}

// HandleAddContexts handles POST /v0.5/hip/add-contexts requests.
func (h *Handler) HandleAddContexts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddContextsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	link, err := h.service.AddContexts(ctx, req.toService())
	if err != nil {
		h.logger.WarnContext(ctx, "add contexts rejected",
			"request_id", requestID,
			"patient_reference", req.ReferenceNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromLink(link))
}
