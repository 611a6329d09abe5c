package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taisey/cors"
	"github.com/taisey/cors/internal/config"
	"github.com/taisey/cors/internal/server"
)

const origin = "http://example.com"

func newServer(t *testing.T, framework string) (*server.Server, *cors.Middleware, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	mw, err := cors.NewMiddleware(config.DefaultPolicy().CORSConfig(), cors.WithLogger(log))
	require.NoError(t, err)
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Framework: framework},
		Log:    config.LogConfig{Level: "info", Format: "json"},
	}
	return server.New(cfg, log, mw), mw, &buf
}

// do sends a request to srv, whatever its framework.
func do(t *testing.T, srv *server.Server, req *http.Request) (int, http.Header, string) {
	t.Helper()
	if app := srv.App(); app != nil {
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, resp.Header, string(body)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec.Code, rec.Header(), rec.Body.String()
}

func preflight(path string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "allow_request_header")
	return req
}

func actual(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Origin", origin)
	return req
}

func TestRoutesCarryCORSHeaders(t *testing.T) {
	cases := []struct {
		path   string
		status int
	}{
		{path: "/hello", status: http.StatusOK},
		{path: "/status-error", status: http.StatusInternalServerError},
		{path: "/response-error", status: http.StatusInternalServerError},
		{path: "/panic", status: http.StatusInternalServerError},
	}
	for _, framework := range []string{config.FrameworkHTTP, config.FrameworkGin, config.FrameworkFiber} {
		for _, tc := range cases {
			t.Run(framework+tc.path, func(t *testing.T) {
				srv, _, _ := newServer(t, framework)

				status, hdrs, _ := do(t, srv, actual(tc.path))
				assert.Equal(t, tc.status, status)
				assert.Equal(t, origin, hdrs.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "expose_header_1,expose_header_2", hdrs.Get("Access-Control-Expose-Headers"))
				assert.NotEmpty(t, hdrs.Get(server.RequestIDHeader))

				status, hdrs, _ = do(t, srv, preflight(tc.path))
				assert.Equal(t, http.StatusOK, status)
				assert.Equal(t, origin, hdrs.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "allow_request_header", hdrs.Get("Access-Control-Allow-Headers"))
				assert.Equal(t, "Hello CORS", hdrs.Get("X-Preflight-Cors"))
			})
		}
	}
}

func TestOuterFailureCarriesCORSHeaders(t *testing.T) {
	for _, path := range []string{"/cors_status_exception", "/cors_response_exception"} {
		t.Run(path, func(t *testing.T) {
			srv, _, _ := newServer(t, config.FrameworkHTTP)

			status, hdrs, _ := do(t, srv, preflight(path))
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, origin, hdrs.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "allow_request_header", hdrs.Get("Access-Control-Allow-Headers"))

			status, hdrs, _ = do(t, srv, actual(path))
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, origin, hdrs.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestIDIsReused(t *testing.T) {
	srv, _, _ := newServer(t, config.FrameworkHTTP)
	req := actual("/hello")
	req.Header.Set(server.RequestIDHeader, "abc-123")

	_, hdrs, body := do(t, srv, req)
	assert.Equal(t, "abc-123", hdrs.Get(server.RequestIDHeader))
	assert.Equal(t, "Hello, World!", body)
}

func TestLegacyRoute(t *testing.T) {
	srv, _, _ := newServer(t, config.FrameworkHTTP)

	status, hdrs, body := do(t, srv, actual("/legacy"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello from net/http!", body)
	assert.Equal(t, origin, hdrs.Get("Access-Control-Allow-Origin"))
}

func TestPanicIsLogged(t *testing.T) {
	srv, _, buf := newServer(t, config.FrameworkHTTP)

	status, _, _ := do(t, srv, actual("/panic"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, buf.String(), "recovered from panic")
	assert.Contains(t, buf.String(), "boom")
}

// admin returns a request to an admin endpoint from a local client.
func admin(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:50000"
	return req
}

func TestAdminRequiresLoopback(t *testing.T) {
	cases := []struct {
		remote string
		status int
	}{
		{remote: "127.0.0.1:50000", status: http.StatusOK},
		{remote: "[::1]:50000", status: http.StatusOK},
		{remote: "192.0.2.1:50000", status: http.StatusForbidden},
		{remote: "[2001:db8::1]:50000", status: http.StatusForbidden},
		{remote: "garbage", status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.remote, func(t *testing.T) {
			srv, mw, _ := newServer(t, config.FrameworkHTTP)

			req := admin(http.MethodGet, "/admin/cors", "")
			req.RemoteAddr = tc.remote
			status, _, _ := do(t, srv, req)
			assert.Equal(t, tc.status, status)

			req = admin(http.MethodPut, "/admin/cors/debug", `{"debug": true}`)
			req.RemoteAddr = tc.remote
			do(t, srv, req)
			assert.Equal(t, tc.status == http.StatusOK, mw.Debug())
		})
	}
}

func TestAdminReconfigure(t *testing.T) {
	srv, mw, _ := newServer(t, config.FrameworkHTTP)

	req := admin(http.MethodPut, "/admin/cors",
		`{"Origins": ["https://*.com", "null"], "MaxAgeInSeconds": -2}`)
	status, _, body := do(t, srv, req)
	require.Equal(t, http.StatusBadRequest, status)
	var errs struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &errs))
	assert.Len(t, errs.Errors, 3)
	assert.Equal(t, []string{origin}, mw.Config().Origins)

	req = admin(http.MethodPut, "/admin/cors", `{"Origins": ["https://example.org"], "Methods": ["PUT"]}`)
	status, _, _ = do(t, srv, req)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, []string{"https://example.org"}, mw.Config().Origins)

	status, _, body = do(t, srv, admin(http.MethodGet, "/admin/cors", ""))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"https://example.org"`)

	// The old origin is no longer allowed.
	_, hdrs, _ := do(t, srv, actual("/hello"))
	assert.Empty(t, hdrs.Get("Access-Control-Allow-Origin"))
}

func TestAdminDebug(t *testing.T) {
	srv, mw, _ := newServer(t, config.FrameworkHTTP)

	req := admin(http.MethodPut, "/admin/cors/debug", `{"debug": true}`)
	status, _, _ := do(t, srv, req)
	require.Equal(t, http.StatusNoContent, status)
	assert.True(t, mw.Debug())

	// In debug mode, rejected preflights list what is allowed.
	req = preflight("/hello")
	req.Header.Set("Access-Control-Request-Headers", "x-unknown")
	_, hdrs, _ := do(t, srv, req)
	assert.Equal(t, "allow_request_header", hdrs.Get("Access-Control-Allow-Headers"))
}
