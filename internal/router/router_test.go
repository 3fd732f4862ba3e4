package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/deppfellow/call-relay/internal/config"
	"github.com/deppfellow/call-relay/internal/handler"
	"github.com/deppfellow/call-relay/internal/middleware"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/service"
	"github.com/deppfellow/call-relay/internal/vapi"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream is a stand-in for the call-placement API that counts hits.
type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32

	mu   sync.Mutex
	last map[string]any
	auth string
}

func (u *upstream) received() (map[string]any, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last, u.auth
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()

	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)

		raw, _ := io.ReadAll(r.Body)

		u.mu.Lock()
		u.auth = r.Header.Get("Authorization")
		_ = json.Unmarshal(raw, &u.last)
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.srv.Close)

	return u
}

func configuredVapi(baseURL string) config.VapiConfig {
	return config.VapiConfig{
		PrivateKey:    "sk_test_secret",
		AssistantID:   "assistant-1",
		PhoneNumberID: "phone-1",
		BaseURL:       baseURL,
	}
}

func newTestRouter(t *testing.T, vapiCfg config.VapiConfig) *echo.Echo {
	t.Helper()

	cfg := config.Default()
	cfg.Vapi = vapiCfg

	logger := zerolog.Nop()
	srv := server.New(cfg, &logger, nil)

	services := service.NewServices(srv, vapi.NewClient(vapiCfg.BaseURL, nil, &logger))

	return NewRouter(srv, handler.NewHandlers(srv, services), middleware.NewMiddlewares(srv))
}

func do(r *echo.Echo, method, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, CallPath, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestInitiateCall_Preflight(t *testing.T) {
	// Unconfigured on purpose: OPTIONS never looks at credentials.
	r := newTestRouter(t, config.VapiConfig{})

	rec := do(r, http.MethodOptions, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
}

func TestInitiateCall_Reachable(t *testing.T) {
	r := newTestRouter(t, config.VapiConfig{})

	rec := do(r, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, map[string]any{
		"success": true,
		"message": "initiate-call endpoint is reachable",
	}, decode(t, rec))
}

func TestInitiateCall_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, configuredVapi("http://127.0.0.1:1"))

	// FOO and LINK are outside Echo's Any list and are rejected by the router itself.
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodTrace, "PROPFIND", "FOO", "LINK"} {
		t.Run(method, func(t *testing.T) {
			rec := do(r, method, `{"phoneNumber":"+15551234567"}`)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, map[string]any{"success": false, "message": "Method not allowed"}, decode(t, rec))
		})
	}
}

func TestInitiateCall_ConfigurationCheckedBeforeInput(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"id":"abc123"}`)

	cfg := configuredVapi(u.srv.URL)
	cfg.AssistantID = ""
	r := newTestRouter(t, cfg)

	rec := do(r, http.MethodPost, `{"phoneNumber":"not-a-number"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, map[string]any{
		"success": false,
		"message": "Server misconfigured: missing Vapi credentials.",
	}, decode(t, rec))
	assert.Zero(t, u.calls.Load())
}

func TestInitiateCall_PublicKeyRejected(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"id":"abc123"}`)

	cfg := configuredVapi(u.srv.URL)
	cfg.PrivateKey = "pk_live_123"
	r := newTestRouter(t, cfg)

	rec := do(r, http.MethodPost, `{"phoneNumber":"+15551234567"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertCORS(t, rec)
	assert.Contains(t, decode(t, rec)["message"], "public key")
	assert.Zero(t, u.calls.Load())
}

func TestInitiateCall_InvalidInput(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"id":"abc123"}`)
	r := newTestRouter(t, configuredVapi(u.srv.URL))

	bodies := map[string]string{
		"missing field":     `{}`,
		"empty":             `{"phoneNumber":""}`,
		"no plus":           `{"phoneNumber":"15551234567"}`,
		"leading zero":      `{"phoneNumber":"+05551234567"}`,
		"too long":          `{"phoneNumber":"+1234567890123456"}`,
		"letters":           `{"phoneNumber":"+1555abc4567"}`,
		"not a string":      `{"phoneNumber":15551234567}`,
		"malformed json":    `{"phoneNumber":`,
		"surrounding space": `{"phoneNumber":" +15551234567"}`,
		"upper case key":    `{"PHONENUMBER":"+15551234567"}`,
		"near-match key":    `{"phoneNumber":"bad","phonenumber":"+15551234567"}`,
		"trailing data":     `{"phoneNumber":"+15551234567"} trailing`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := do(r, http.MethodPost, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, map[string]any{
				"success": false,
				"message": "Invalid phone number format. Please include country code.",
			}, decode(t, rec))
		})
	}

	assert.Zero(t, u.calls.Load())
}

func TestInitiateCall_Success(t *testing.T) {
	u := newUpstream(t, http.StatusCreated, `{"id":"abc123","status":"queued"}`)
	r := newTestRouter(t, configuredVapi(u.srv.URL))

	rec := do(r, http.MethodPost, `{"phoneNumber":"+15551234567"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, map[string]any{
		"success": true,
		"message": "Call initiated successfully",
		"callId":  "abc123",
	}, decode(t, rec))

	require.Equal(t, int32(1), u.calls.Load())

	sent, auth := u.received()
	assert.Equal(t, "Bearer sk_test_secret", auth)
	assert.Equal(t, "outboundPhoneCall", sent["type"])
	assert.Equal(t, "phone-1", sent["phoneNumberId"])
	assert.Equal(t, "assistant-1", sent["assistantId"])
	assert.Equal(t, map[string]any{"number": "+15551234567"}, sent["customer"])
}

func TestInitiateCall_UpstreamRejection(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"message forwarded", http.StatusPaymentRequired, `{"message":"insufficient balance"}`, "insufficient balance"},
		{"no message", http.StatusBadRequest, `{}`, "Failed to initiate call with VAPI"},
		{"message list", http.StatusBadRequest, `{"message":["a","b"]}`, "a; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstream(t, tt.status, tt.body)
			r := newTestRouter(t, configuredVapi(u.srv.URL))

			rec := do(r, http.MethodPost, `{"phoneNumber":"+15551234567"}`)

			assert.Equal(t, tt.status, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, map[string]any{"success": false, "message": tt.wantMessage}, decode(t, rec))
		})
	}
}

func TestInitiateCall_TransportFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	r := newTestRouter(t, configuredVapi(dead.URL))

	rec := do(r, http.MethodPost, `{"phoneNumber":"+15551234567"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, map[string]any{
		"success": false,
		"message": "Internal server error. Please try again.",
	}, decode(t, rec))
}

func TestStatus(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		r := newTestRouter(t, configuredVapi("http://127.0.0.1:1"))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, map[string]any{"vapi": map[string]any{"status": "configured"}}, body["checks"])
	})

	t.Run("missing credentials", func(t *testing.T) {
		r := newTestRouter(t, config.VapiConfig{})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, map[string]any{"vapi": map[string]any{"status": "missing_credentials"}}, body["checks"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, config.VapiConfig{})

	// One request so the http collectors have samples.
	do(r, http.MethodGet, "")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestIndexPage(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<h1>call me</h1>"), 0o600))

	cfg := config.Default()
	cfg.Server.IndexFile = index

	logger := zerolog.Nop()
	srv := server.New(cfg, &logger, nil)
	services := service.NewServices(srv, vapi.NewClient(cfg.Vapi.BaseURL, nil, &logger))
	r := NewRouter(srv, handler.NewHandlers(srv, services), middleware.NewMiddlewares(srv))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>call me</h1>", rec.Body.String())
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, config.VapiConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "message": "Route not found"}, decode(t, rec))
}
