package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rawgroundbeef/openfacilitator/internal/app"
)

func testConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{Port: 0, LogLevel: "error"},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   ":memory:",
		},
		Access: app.AccessConfig{SigningSecret: "bootstrap-test-secret"},
		Facilitator: app.FacilitatorConfig{
			URL:     "https://facilitator.example",
			Timeout: 5 * time.Second,
		},
		Proxy:    app.ProxyConfig{Timeout: 5 * time.Second},
		Webhooks: app.WebhookConfig{Timeout: time.Second, MaxAttempts: 1},
	}
}

func TestBuildRuntime(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	stack, err := buildRuntime(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Close(zap.NewNop()) })

	require.NotNil(t, stack.DB)
	require.NotNil(t, stack.Webhooks)
	require.NotNil(t, stack.Router)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateRejectsMissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Access.SigningSecret = " "
	require.Error(t, cfg.Validate())
}
