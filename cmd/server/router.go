package main

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	discoveryhandler "hipservice/internal/discovery/handler"
	linkhandler "hipservice/internal/link/handler"
	"hipservice/internal/platform/metrics"
	"hipservice/internal/platform/middleware"
	userauthhandler "hipservice/internal/userauth/handler"
	"hipservice/pkg/platform/httputil"
)

const healthTimeout = 2 * time.Second

type routerDeps struct {
	logger         *slog.Logger
	registry       *prometheus.Registry
	httpMetrics    *metrics.Metrics
	requestTimeout time.Duration
	validator      middleware.GatewayValidator
	discovery      discoveryhandler.Service
	userAuth       userauthhandler.Service
	links          linkhandler.Service
	health         map[string]func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/health", healthHandler(deps.health))
	r.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{Registry: deps.registry}))

	r.Group(func(gw chi.Router) {
		gw.Use(middleware.Logger(deps.logger))
		gw.Use(middleware.Timeout(deps.requestTimeout))
		gw.Use(middleware.ContentTypeJSON)
		gw.Use(middleware.LatencyMiddleware(deps.httpMetrics))
		gw.Use(middleware.RequireGatewayToken(deps.validator, deps.logger))

		discoveryhandler.New(deps.discovery, deps.logger).Register(gw)
		userauthhandler.New(deps.userAuth, deps.logger).Register(gw)
	})

	// Calls from the clinical system on the hospital network carry no gateway token.
	r.Group(func(hip chi.Router) {
		hip.Use(middleware.Logger(deps.logger))
		hip.Use(middleware.Timeout(deps.requestTimeout))
		hip.Use(middleware.ContentTypeJSON)
		hip.Use(middleware.LatencyMiddleware(deps.httpMetrics))

		linkhandler.New(deps.links, deps.logger).Register(hip)
	})
	return r
}

func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
