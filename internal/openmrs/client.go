// Package openmrs adapts an OpenMRS instance into the discovery record source:
// patients come from its FHIR R4 API and care contexts from the HIP module's
// REST endpoint.
package openmrs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"hipservice/internal/platform/config"
	"hipservice/pkg/platform/circuit"
	"hipservice/pkg/platform/sentinel"
)

// errNotFound marks a 404 from OpenMRS. Callers decide whether it means empty.
var errNotFound = errors.New("openmrs resource not found")

// Client is a thin OpenMRS HTTP client guarded by a circuit breaker. Transport
// errors and 5xx responses count as failures; while the circuit is open calls
// fail fast with sentinel.ErrUnavailable.
type Client struct {
	http    *resty.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// NewClient builds a client for the OpenMRS instance at cfg.BaseURL.
func NewClient(cfg config.OpenMRSConfig, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Username != "" {
		httpClient.SetBasicAuth(cfg.Username, cfg.Password)
	}

	c := &Client{
		http:    httpClient,
		breaker: circuit.New("openmrs"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics.SetBreakerState(c.breaker.State())
	return c
}

// get issues GET path with query and decodes a 2xx JSON body into result.
func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string, result any) error {
	if !c.breaker.Allow() {
		c.metrics.ObserveRequest(endpoint, "rejected", 0)
		return fmt.Errorf("openmrs %s: circuit open: %w", endpoint, sentinel.ErrUnavailable)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result).
		ForceContentType("application/json").
		Get(path)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		c.recordFailure(ctx, endpoint)
		c.metrics.ObserveRequest(endpoint, "error", elapsed)
		return fmt.Errorf("openmrs %s: %w", endpoint, err)
	case resp.StatusCode() >= http.StatusInternalServerError:
		c.recordFailure(ctx, endpoint)
		c.metrics.ObserveRequest(endpoint, "error", elapsed)
		return fmt.Errorf("openmrs %s: unexpected status %d", endpoint, resp.StatusCode())
	}

	c.recordSuccess(ctx, endpoint)
	c.metrics.ObserveRequest(endpoint, "ok", elapsed)
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return errNotFound
	case resp.IsError():
		return fmt.Errorf("openmrs %s: unexpected status %d", endpoint, resp.StatusCode())
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, endpoint string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.SetBreakerState(circuit.StateOpen)
		c.logger.WarnContext(ctx, "openmrs circuit opened", "endpoint", endpoint)
	}
}

func (c *Client) recordSuccess(ctx context.Context, endpoint string) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.SetBreakerState(circuit.StateClosed)
		c.logger.InfoContext(ctx, "openmrs circuit closed", "endpoint", endpoint)
	}
}
