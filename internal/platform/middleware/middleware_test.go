package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hipservice/internal/platform/metrics"
	"hipservice/pkg/requestcontext"
	"hipservice/pkg/testutil"
)

var testKey = []byte("gateway-test-key")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generated when absent", func(t *testing.T) {
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})

	t.Run("propagated when supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "gw-123")
		rr := testutil.DoRequest(h, req)
		assert.Equal(t, "gw-123", seen)
		assert.Equal(t, "gw-123", rr.Header().Get(RequestIDHeader))
	})
}

func TestRequestTime(t *testing.T) {
	var first, second time.Time
	h := RequestTime(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(2 * time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, first.IsZero())
	assert.Equal(t, first, second)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/v0.5/care-contexts/discover", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, "/v0.5/care-contexts/discover", line["path"])
	assert.NotEmpty(t, line["request_id"])
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := testutil.DoRequest(h, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnsupportedMediaType, "unsupported_media_type")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	testutil.AssertStatus(t, testutil.DoRequest(h, req), http.StatusOK)
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/patients/{id}", okHandler)

	testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/patients/42", nil))

	assert.Equal(t, float64(1), promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/patients/{id}", "200")))
	assert.Equal(t, float64(0), promtestutil.ToFloat64(m.InFlight))
}

// =============================================================================
// Gateway authentication
// =============================================================================

func TestRequireGatewayToken(t *testing.T) {
	var subject string
	h := RequireGatewayToken(NewHMACValidator(testKey), discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject = requestcontext.GatewaySubject(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	request := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		return testutil.DoRequest(h, req)
	}

	t.Run("valid token", func(t *testing.T) {
		rr := request("Bearer " + testutil.GatewayToken(t, testKey, "gateway", time.Minute))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "gateway", subject)
	})

	t.Run("missing header", func(t *testing.T) {
		testutil.AssertStatusAndError(t, request(""), http.StatusUnauthorized, "unauthorized")
	})

	t.Run("expired token", func(t *testing.T) {
		rr := request("Bearer " + testutil.GatewayToken(t, testKey, "gateway", -time.Minute))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("wrong key", func(t *testing.T) {
		rr := request("Bearer " + testutil.GatewayToken(t, []byte("other-key"), "gateway", time.Minute))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("disabled without validator", func(t *testing.T) {
		open := RequireGatewayToken(nil, discardLogger())(http.HandlerFunc(okHandler))
		testutil.AssertStatus(t, testutil.DoRequest(open, httptest.NewRequest(http.MethodPost, "/", nil)), http.StatusOK)
	})
}

func TestHMACValidator_RequiresSubject(t *testing.T) {
	token := testutil.GatewayToken(t, testKey, "", time.Minute)
	_, err := NewHMACValidator(testKey).ValidateToken(token)
	assert.Error(t, err)
}
