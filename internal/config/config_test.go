package config_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taisey/cors"
	"github.com/taisey/cors/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, config.FrameworkHTTP, cfg.Server.Framework)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Policy.File)
	assert.False(t, cfg.Policy.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CORSDEMO_PORT", "9090")
	t.Setenv("CORSDEMO_HOST", "127.0.0.1")
	t.Setenv("CORSDEMO_FRAMEWORK", "gin")
	t.Setenv("CORSDEMO_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("CORSDEMO_LOG_LEVEL", "debug")
	t.Setenv("CORSDEMO_LOG_FORMAT", "text")
	t.Setenv("CORSDEMO_POLICY_FILE", "/etc/cors.yaml")
	t.Setenv("CORSDEMO_CORS_DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, config.FrameworkGin, cfg.Server.Framework)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/etc/cors.yaml", cfg.Policy.File)
	assert.True(t, cfg.Policy.Debug)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("CORSDEMO_PORT", "eighty")
		_, err := config.Load()
		assert.ErrorContains(t, err, "failed to load server config")
	})
	t.Run("framework", func(t *testing.T) {
		t.Setenv("CORSDEMO_FRAMEWORK", "echo")
		_, err := config.Load()
		assert.ErrorContains(t, err, `unknown framework "echo"`)
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPolicyYAML(t *testing.T) {
	path := writeFile(t, "cors.yaml", `
origins:
  - https://example.com
  - https://*.example.com
credentialed: true
methods: [GET, PUT]
request_headers: [Authorization, X-Requested-With]
response_headers: [X-Request-Id]
max_age: 600
preflight_headers:
  X-Preflight-Cors: Hello CORS
echo_requested_method: true
preflight_status: 204
preflight_failure_status: 403
`)
	p, err := config.LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com", "https://*.example.com"}, p.Origins)
	assert.True(t, p.Credentialed)
	assert.Equal(t, []string{"GET", "PUT"}, p.Methods)
	assert.Equal(t, 600, p.MaxAge)
	// Keys are lowercased on the way in.
	assert.Equal(t, map[string]string{"x-preflight-cors": "Hello CORS"}, p.PreflightHeaders)

	cfg := p.CORSConfig()
	assert.Equal(t, cors.EchoRequestedMethod, cfg.MethodsStrategy)
	mw, err := cors.NewMiddleware(cfg)
	require.NoError(t, err)
	got := mw.Config()
	assert.Equal(t, http.StatusNoContent, got.PreflightStatus)
	assert.Equal(t, http.StatusForbidden, got.PreflightFailureStatus)
	assert.Equal(t, map[string]string{"X-Preflight-Cors": "Hello CORS"}, got.PreflightHeaders)
}

func TestLoadPolicyJSON(t *testing.T) {
	path := writeFile(t, "cors.json", `{"origins": ["*"], "methods": ["*"], "max_age": "30"}`)
	p, err := config.LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, p.Origins)
	assert.Equal(t, 30, p.MaxAge)
}

func TestLoadPolicyErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "error reading policy file")
	})
	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "cors.yaml", "origins: [https://example.com]\norigin_func: true\n")
		_, err := config.LoadPolicy(path)
		assert.ErrorContains(t, err, "invalid policy")
	})
}

func TestDefaultPolicyIsValid(t *testing.T) {
	_, err := cors.NewMiddleware(config.DefaultPolicy().CORSConfig())
	assert.NoError(t, err)
}
