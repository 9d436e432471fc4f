package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resto-dashboard/internal/config"
	"github.com/noah-isme/resto-dashboard/internal/handler"
)

type fixedSession bool

func (f fixedSession) Authenticated() bool { return bool(f) }

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "resto-dashboard", AppEnv: "test", BackendURL: "http://backend"}, fixedSession(true)))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, "service healthy", payload.Message)
	require.Contains(t, string(payload.Data), `"session_active":true`)
	require.Contains(t, string(payload.Data), `"environment":"test"`)
}
